package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"concierge/refdata"
)

// sentimentKeywords is the small keyword map used by the archive search's
// sentiment filter. Matching is substring-based over the lowered content.
var sentimentKeywords = map[string][]string{
	"positive": {"beat", "compound", "kinder", "fills", "ends the", "without losing"},
	"negative": {"slipping", "resentment", "exhaust", "drift", "never", "fragmented"},
}

// archiveCache holds a lower-cased projection of the content archive keyed by
// a cheap signature (item count + sum of last-modified unix seconds), so
// repeated searches in one session skip redundant case folding. Two different
// content sets could in principle coincide on the signature; accepted risk,
// see DESIGN.md. Session-scoped: each Catalog owns its own cache.
type archiveCache struct {
	mu        sync.Mutex
	signature string
	items     []loweredItem
}

type loweredItem struct {
	idx     int
	title   string
	content string
	tags    []string
}

func newArchiveCache() *archiveCache {
	return &archiveCache{}
}

func archiveSignature(items []refdata.ContentItem) string {
	var sum int64
	for _, item := range items {
		sum += item.LastModified.Unix()
	}
	return fmt.Sprintf("%d:%d", len(items), sum)
}

// projection returns the cached lowered view, rebuilding it whenever the
// archive's signature changes.
func (ac *archiveCache) projection(items []refdata.ContentItem) []loweredItem {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	sig := archiveSignature(items)
	if sig == ac.signature && ac.items != nil {
		return ac.items
	}

	lowered := make([]loweredItem, len(items))
	for i, item := range items {
		tags := make([]string, len(item.Tags))
		for j, tag := range item.Tags {
			tags[j] = strings.ToLower(tag)
		}
		lowered[i] = loweredItem{
			idx:     i,
			title:   strings.ToLower(item.Title),
			content: strings.ToLower(item.Content),
			tags:    tags,
		}
	}

	ac.signature = sig
	ac.items = lowered
	return lowered
}

type archiveHit struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	LastModified string   `json:"last_modified"`
	Engagement   int      `json:"engagement"`
	Excerpt      string   `json:"excerpt"`
}

// searchContentArchive filters the reference content set by substring match,
// then category, then sentiment, and finally sorts by recency or engagement.
func (c *Catalog) searchContentArchive() Definition {
	return Definition{
		Name:        "search_content_archive",
		Description: "Search the studio's published content archive by text, category and sentiment.",
		Schema: ObjectSchema(
			"search_content_archive",
			"Search the studio's published content archive by text, category and sentiment.",
			map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text matched against title, body and tags.",
				},
				"content_type": map[string]any{
					"type":        "string",
					"enum":        []any{"article", "case_study", "video"},
					"description": "Optional category filter.",
				},
				"sentiment": map[string]any{
					"type":        "string",
					"enum":        []any{"positive", "negative"},
					"description": "Optional sentiment filter.",
				},
				"sort_by": map[string]any{
					"type":        "string",
					"enum":        []any{"recency", "engagement"},
					"description": "Result ordering; defaults to recency.",
				},
			},
			[]string{"query"},
		),
		Fn: func(args map[string]any) (string, error) {
			query := strings.ToLower(strings.TrimSpace(stringArg(args, "query")))
			if query == "" {
				return failure(
					"empty query",
					"Provide a word or phrase to search the archive for.",
				)
			}

			lowered := c.archive.projection(c.store.Archive)

			var selected []refdata.ContentItem
			for _, li := range lowered {
				if !strings.Contains(li.title, query) &&
					!strings.Contains(li.content, query) &&
					!tagsContain(li.tags, query) {
					continue
				}
				selected = append(selected, c.store.Archive[li.idx])
			}

			if contentType := stringArg(args, "content_type"); contentType != "" {
				selected = filterItems(selected, func(item refdata.ContentItem) bool {
					return item.Category == contentType
				})
			}

			if sentiment := stringArg(args, "sentiment"); sentiment != "" {
				keywords := sentimentKeywords[sentiment]
				selected = filterItems(selected, func(item refdata.ContentItem) bool {
					lower := strings.ToLower(item.Content)
					for _, kw := range keywords {
						if strings.Contains(lower, kw) {
							return true
						}
					}
					return false
				})
			}

			sortBy := stringArg(args, "sort_by")
			if sortBy == "engagement" {
				sort.SliceStable(selected, func(i, j int) bool {
					return selected[i].Engagement > selected[j].Engagement
				})
			} else {
				sort.SliceStable(selected, func(i, j int) bool {
					return selected[i].LastModified.After(selected[j].LastModified)
				})
			}

			hits := make([]archiveHit, len(selected))
			for i, item := range selected {
				hits[i] = archiveHit{
					ID:           item.ID,
					Title:        item.Title,
					Category:     item.Category,
					Tags:         item.Tags,
					LastModified: item.LastModified.Format("2006-01-02"),
					Engagement:   item.Engagement,
					Excerpt:      excerpt(item.Content),
				}
			}

			return marshal(map[string]any{
				"query":     query,
				"results":   hits,
				"count":     len(hits),
				"next_step": "Offer to summarize or link any result the user finds relevant.",
			})
		},
	}
}

func tagsContain(tags []string, query string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, query) {
			return true
		}
	}
	return false
}

func filterItems(items []refdata.ContentItem, keep func(refdata.ContentItem) bool) []refdata.ContentItem {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func excerpt(content string) string {
	if len(content) <= 80 {
		return content
	}
	return content[:80] + "…"
}
