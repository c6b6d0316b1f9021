package tools

import (
	"sort"
	"strings"
)

type diagnosticEntry struct {
	Pattern           string   `json:"pattern"`
	Category          string   `json:"category"`
	Confidence        float64  `json:"confidence"`
	MatchedSymptoms   []string `json:"matched_symptoms"`
	Priority          string   `json:"priority"`
	FirstPhase        string   `json:"first_phase,omitempty"`
	CollapseSignature string   `json:"collapse_signature"`
	Recommendation    string   `json:"recommendation"`
}

// diagnoseStrategicGap ranks the reference chains against a reported symptom
// list. Confidence is matched-symptom count over the chain's total symptom
// count; the top three survive, labelled immediate/high/medium by rank.
func (c *Catalog) diagnoseStrategicGap() Definition {
	return Definition{
		Name:        "diagnose_strategic_gap",
		Description: "Match reported symptoms against known behavioral patterns and rank the most likely strategic gaps.",
		Schema: ObjectSchema(
			"diagnose_strategic_gap",
			"Match reported symptoms against known behavioral patterns and rank the most likely strategic gaps.",
			map[string]any{
				"symptoms": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Observed symptoms in the client's own words.",
				},
				"context": map[string]any{
					"type":        "string",
					"description": "Optional free-text background about the situation.",
				},
				"severity": map[string]any{
					"type":        "string",
					"enum":        []any{"mild", "moderate", "severe"},
					"description": "Caller's read on how bad things are.",
				},
			},
			[]string{"symptoms"},
		),
		Fn: func(args map[string]any) (string, error) {
			symptoms := stringSliceArg(args, "symptoms")
			if len(symptoms) == 0 {
				return failure(
					"no symptoms provided",
					"Ask the user what they are struggling with and call again with at least one symptom.",
				)
			}

			joined := strings.ToLower(strings.Join(symptoms, " "))

			var ranked []diagnosticEntry
			for _, chain := range c.store.Chains {
				var hit []string
				for _, symptom := range chain.Symptoms {
					if strings.Contains(joined, strings.ToLower(symptom)) {
						hit = append(hit, symptom)
					}
				}
				if len(hit) == 0 {
					continue
				}
				entry := diagnosticEntry{
					Pattern:           chain.Name,
					Category:          chain.Category,
					Confidence:        float64(len(hit)) / float64(len(chain.Symptoms)),
					MatchedSymptoms:   hit,
					CollapseSignature: chain.CollapseSignature,
					Recommendation:    "Work toward: " + chain.CoherenceSignature,
				}
				if len(chain.Phases) > 0 {
					entry.FirstPhase = chain.Phases[0].Name
				}
				ranked = append(ranked, entry)
			}

			if len(ranked) == 0 {
				return failure(
					"no known pattern matches these symptoms",
					"Gather more specific symptoms or route the user to a strategy consultation.",
				)
			}

			sort.SliceStable(ranked, func(i, j int) bool {
				return ranked[i].Confidence > ranked[j].Confidence
			})
			if len(ranked) > 3 {
				ranked = ranked[:3]
			}
			priorities := []string{"immediate", "high", "medium"}
			for i := range ranked {
				ranked[i].Priority = priorities[i]
			}

			return marshal(map[string]any{
				"diagnostics": ranked,
				"context":     stringArg(args, "context"),
				"severity":    stringArg(args, "severity"),
				"next_step":   "Discuss the top-ranked pattern with the user and confirm which matched symptoms resonate.",
			})
		},
	}
}
