// Package refdata holds the read-only reference tables consumed by the tool
// catalog and the analysis engine: behavioral pattern chains, the glossary,
// the content archive, service cost entries and team contacts.
//
// A Store is shared by reference and never mutated after construction, so it
// is safe to read from concurrent tool invocations.
package refdata

import "time"

// Phase is one stage of a behavioral pattern's progression.
type Phase struct {
	Name        string
	Description string
}

// Chain is a named, reference-defined symptom cluster used for diagnostic
// matching against free-text input.
type Chain struct {
	ID                 string
	Name               string
	Category           string
	Symptoms           []string
	Phases             []Phase
	CollapseSignature  string
	CoherenceSignature string
	Severity           string // "", "Moderate", "High" or "Critical"
}

// GlossaryTerm is a knowledge-base entry.
type GlossaryTerm struct {
	ID         string
	Term       string
	Definition string
	Tags       []string
}

// ContentItem is one archive entry searchable by the content tools.
type ContentItem struct {
	ID           string
	Title        string
	Content      string
	Category     string
	Tags         []string
	LastModified time.Time
	Engagement   int
}

// ServiceCost is one row of the fixed project cost table.
type ServiceCost struct {
	Hours    int
	BaseCost float64
}

// TeamContact is a routing entry for the get_team_contact tool.
type TeamContact struct {
	Name  string
	Role  string
	Email string
	Area  string
}

// StackOption maps a project type to a recommended technology stack.
type StackOption struct {
	ProjectType string
	Stack       []string
	Rationale   string
}

// Store aggregates all reference tables. Read-only after construction.
type Store struct {
	Chains   []Chain
	Glossary []GlossaryTerm
	Archive  []ContentItem
	Costs    map[string]ServiceCost
	Team     []TeamContact
	Stacks   []StackOption
}

// Default returns the built-in reference data set.
func Default() *Store {
	return &Store{
		Chains:   defaultChains,
		Glossary: defaultGlossary,
		Archive:  defaultArchive,
		Costs:    defaultCosts,
		Team:     defaultTeam,
		Stacks:   defaultStacks,
	}
}
