package tools

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// glossarySource adapts the glossary for fuzzy matching.
type glossarySource struct {
	catalog *Catalog
}

func (g glossarySource) String(i int) string {
	return g.catalog.store.Glossary[i].Term
}

func (g glossarySource) Len() int {
	return len(g.catalog.store.Glossary)
}

type knowledgeHit struct {
	Term       string   `json:"term"`
	Definition string   `json:"definition"`
	Tags       []string `json:"tags"`
	Score      int      `json:"score"`
}

// exploreKnowledgeBase looks a term up in the glossary, falling back to
// fuzzy matching when there is no exact hit.
func (c *Catalog) exploreKnowledgeBase() Definition {
	return Definition{
		Name:        "explore_knowledge_base",
		Description: "Look up a term in the studio's knowledge base, with fuzzy matching for near misses.",
		Schema: ObjectSchema(
			"explore_knowledge_base",
			"Look up a term in the studio's knowledge base, with fuzzy matching for near misses.",
			map[string]any{
				"term": map[string]any{
					"type":        "string",
					"description": "The term or phrase to look up.",
				},
			},
			[]string{"term"},
		),
		Fn: func(args map[string]any) (string, error) {
			term := strings.ToLower(strings.TrimSpace(stringArg(args, "term")))
			if term == "" {
				return failure("empty term", "Ask which concept the user wants explained.")
			}

			// Exact match first.
			for _, entry := range c.store.Glossary {
				if strings.ToLower(entry.Term) == term {
					return marshal(map[string]any{
						"matches": []knowledgeHit{{
							Term:       entry.Term,
							Definition: entry.Definition,
							Tags:       entry.Tags,
						}},
						"next_step": "Relate the definition back to the user's situation.",
					})
				}
			}

			results := fuzzy.FindFrom(term, glossarySource{catalog: c})
			if len(results) == 0 {
				return failure(
					"no glossary entry resembles \""+term+"\"",
					"Explain the concept from general knowledge and note it is not a studio term.",
				)
			}
			if len(results) > 3 {
				results = results[:3]
			}

			hits := make([]knowledgeHit, len(results))
			for i, r := range results {
				entry := c.store.Glossary[r.Index]
				hits[i] = knowledgeHit{
					Term:       entry.Term,
					Definition: entry.Definition,
					Tags:       entry.Tags,
					Score:      r.Score,
				}
			}

			return marshal(map[string]any{
				"matches":   hits,
				"next_step": "Confirm which of the near matches the user meant.",
			})
		},
	}
}
