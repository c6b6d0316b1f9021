package analysis

// toneCategory is one of the seven fixed emotional tone buckets. Order
// matters: ties on the winning count keep the first-seen category.
type toneCategory struct {
	Name     string
	Keywords []string
}

var toneLexicon = []toneCategory{
	{Name: "Frustrated", Keywords: []string{"hate", "stuck", "hard", "loop", "annoying", "tired", "frustrated", "pointless", "wasted"}},
	{Name: "Anxious", Keywords: []string{"worried", "anxious", "scared", "afraid", "nervous", "panic", "overwhelmed", "deadline", "behind"}},
	{Name: "Hopeful", Keywords: []string{"hope", "excited", "opportunity", "finally", "momentum", "progress", "better", "growing"}},
	{Name: "Curious", Keywords: []string{"wonder", "curious", "how", "why", "what", "learn", "explore", "interesting"}},
	{Name: "Confident", Keywords: []string{"sure", "ready", "confident", "clear", "decided", "strong", "proven"}},
	{Name: "Discouraged", Keywords: []string{"giving", "quit", "failed", "failure", "lost", "hopeless", "nothing", "nobody"}},
	{Name: "Neutral", Keywords: []string{"okay", "fine", "normal", "usual", "average", "steady"}},
}

// bifurcationKeywords mark input sitting at a pattern's tipping point. When
// risk is High and any of these appear, phase hints collapse to the
// "Critical Bifurcation" label.
var bifurcationKeywords = []string{
	"breaking point", "last chance", "make or break", "can't go on",
	"falling apart", "about to quit", "now or never", "crossroads",
}

// criticalBifurcationLabel overrides per-chain phase hints at High risk.
const criticalBifurcationLabel = "Critical Bifurcation"
