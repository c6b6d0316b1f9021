// Package analysis implements the lexicon-based text analysis engine shared
// by the tool catalog: emotional tone scoring, behavioral pattern (chain)
// matching, distortion risk grading and sentence summarization.
//
// The engine never mutates its reference data and is safe to call from
// concurrent tool invocations.
package analysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"concierge/refdata"
)

// Tone is the winning emotional tone category for an input.
type Tone struct {
	Primary string `json:"primary"`
	Valence int    `json:"valence"`
}

// Risk grades how distorted the input's framing looks.
type Risk struct {
	Level string `json:"level"` // "Low", "Medium" or "High"
}

// ChainMatch is one behavioral pattern detected in the input.
type ChainMatch struct {
	ChainID         string   `json:"chain_id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Severity        string   `json:"severity,omitempty"`
	MatchedSymptoms []string `json:"matched_symptoms"`
	Confidence      float64  `json:"confidence"`
}

// Report is the full analysis result.
type Report struct {
	WordCount      int          `json:"wordCount"`
	EmotionalTone  Tone         `json:"emotionalTone"`
	DistortionRisk Risk         `json:"distortionRisk"`
	DetectedChains []ChainMatch `json:"detectedChains"`
	DetectedTerms  []string     `json:"detectedTerms"`
	PhaseHints     []string     `json:"phaseHints"`
	Insights       []string     `json:"insights"`
	Summary        string       `json:"summary"`
}

// Engine runs all analyses against one reference data set.
type Engine struct {
	store *refdata.Store
}

// NewEngine creates an engine over the given read-only store.
func NewEngine(store *refdata.Store) *Engine {
	return &Engine{store: store}
}

// Analyze runs the full pipeline over free-text input.
func (e *Engine) Analyze(text string) Report {
	words := tokenize(text)
	counts := toneCounts(words)

	tone := primaryTone(counts)
	chains := e.MatchChains(text)
	risk := riskLevel(chains, counts)

	report := Report{
		WordCount:      len(words),
		EmotionalTone:  tone,
		DistortionRisk: Risk{Level: risk},
		DetectedChains: chains,
		DetectedTerms:  e.detectTerms(text),
		PhaseHints:     phaseHints(e.store, chains, risk, text),
		Summary:        summarize(text),
	}
	report.Insights = insights(report)
	return report
}

// ScoreTone returns the per-category whole-word keyword counts for the input.
// Exposed for the sandbox's legacy script path.
func (e *Engine) ScoreTone(text string) map[string]int {
	return toneCounts(tokenize(text))
}

// MatchChains counts, for each reference chain, how many of its symptom
// phrases appear as substrings of the lower-cased input. Confidence is
// hits divided by the chain's total symptom count; chains with no hits are
// dropped and the rest sorted by descending confidence (stable).
func (e *Engine) MatchChains(text string) []ChainMatch {
	lower := strings.ToLower(text)
	var matches []ChainMatch

	for _, chain := range e.store.Chains {
		var hit []string
		for _, symptom := range chain.Symptoms {
			if strings.Contains(lower, strings.ToLower(symptom)) {
				hit = append(hit, symptom)
			}
		}
		if len(hit) == 0 {
			continue
		}
		matches = append(matches, ChainMatch{
			ChainID:         chain.ID,
			Name:            chain.Name,
			Category:        chain.Category,
			Severity:        chain.Severity,
			MatchedSymptoms: hit,
			Confidence:      float64(len(hit)) / float64(len(chain.Symptoms)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func (e *Engine) detectTerms(text string) []string {
	lower := strings.ToLower(text)
	var terms []string
	for _, term := range e.store.Glossary {
		if strings.Contains(lower, strings.ToLower(term.Term)) {
			terms = append(terms, term.Term)
		}
	}
	return terms
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func toneCounts(words []string) map[string]int {
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[strings.Trim(w, "'")]++
	}

	counts := make(map[string]int, len(toneLexicon))
	for _, cat := range toneLexicon {
		total := 0
		for _, kw := range cat.Keywords {
			total += freq[kw]
		}
		counts[cat.Name] = total
	}
	return counts
}

// primaryTone picks the category with the highest count; ties keep the
// first-seen category in lexicon order.
func primaryTone(counts map[string]int) Tone {
	best := toneLexicon[0].Name
	bestCount := counts[best]
	for _, cat := range toneLexicon[1:] {
		if counts[cat.Name] > bestCount {
			best = cat.Name
			bestCount = counts[cat.Name]
		}
	}
	return Tone{Primary: best, Valence: bestCount}
}

func riskLevel(chains []ChainMatch, counts map[string]int) string {
	anyCritical := false
	anyHigh := false
	for _, m := range chains {
		switch m.Severity {
		case "Critical":
			anyCritical = true
		case "High":
			anyHigh = true
		}
	}

	switch {
	case anyCritical, counts["Anxious"] > 3, counts["Frustrated"] > 3:
		return "High"
	case anyHigh, counts["Anxious"] > 1:
		return "Medium"
	default:
		return "Low"
	}
}

// phaseHints defaults to each matched chain's first defined phase. At High
// risk with a bifurcation keyword present, hints collapse to the fixed
// Critical Bifurcation label.
func phaseHints(store *refdata.Store, chains []ChainMatch, risk, text string) []string {
	if len(chains) == 0 {
		return nil
	}

	if risk == "High" {
		lower := strings.ToLower(text)
		for _, kw := range bifurcationKeywords {
			if strings.Contains(lower, kw) {
				return []string{criticalBifurcationLabel}
			}
		}
	}

	byID := make(map[string]refdata.Chain, len(store.Chains))
	for _, c := range store.Chains {
		byID[c.ID] = c
	}

	var hints []string
	for _, m := range chains {
		chain, ok := byID[m.ChainID]
		if !ok || len(chain.Phases) == 0 {
			continue
		}
		hints = append(hints, chain.Phases[0].Name)
	}
	return hints
}

// summarize returns the sentence containing the most lexicon keywords (first
// on tie), truncated to 100 characters with an ellipsis.
func summarize(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	best := sentences[0]
	bestScore := keywordScore(sentences[0])
	for _, s := range sentences[1:] {
		if score := keywordScore(s); score > bestScore {
			best = s
			bestScore = score
		}
	}

	best = strings.TrimSpace(best)
	if len(best) > 100 {
		return best[:100] + "…"
	}
	return best
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func keywordScore(sentence string) int {
	freq := make(map[string]int)
	for _, w := range tokenize(sentence) {
		freq[w]++
	}
	score := 0
	for _, cat := range toneLexicon {
		for _, kw := range cat.Keywords {
			score += freq[kw]
		}
	}
	lower := strings.ToLower(sentence)
	for _, kw := range bifurcationKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

func insights(r Report) []string {
	var out []string
	if len(r.DetectedChains) > 0 {
		top := r.DetectedChains[0]
		out = append(out, fmt.Sprintf("Strongest pattern: %s (%s), matching %d symptom(s).",
			top.Name, top.Category, len(top.MatchedSymptoms)))
	}
	if r.EmotionalTone.Valence > 0 {
		out = append(out, "Dominant tone reads as "+r.EmotionalTone.Primary+".")
	}
	if r.DistortionRisk.Level == "High" {
		out = append(out, "Language suggests elevated distortion risk; recommend a direct conversation before planning.")
	}
	return out
}
