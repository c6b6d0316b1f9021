// Package tools implements the fixed function catalog the conversational
// agent exposes to language models. Each entry is a pure function of its
// arguments returning a JSON string; validation failures are reported inside
// the JSON ({"error", "guidance"}) rather than as Go errors, so the model can
// read and react to them.
package tools

import (
	"encoding/json"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"concierge/analysis"
	"concierge/refdata"
)

// Func is one catalog implementation: (args) → JSON string.
type Func func(args map[string]any) (string, error)

// Definition is a named, schema-described catalog entry. Identity is the
// name; the Schema's required/optional fields match exactly what Fn reads.
type Definition struct {
	Name        string
	Description string
	Schema      mcptypes.Tool
	Fn          Func
	Enabled     bool
}

// InsightSink receives the side effects of the contact-workflow and insight
// tools. Implemented by the storage layer; tools treat it as an external
// collaborator.
type InsightSink interface {
	LogInsight(insight string, tags []string) error
	RecordContact(name, email, topic string) (reference string, err error)
}

// Catalog is the trusted tool registry.
type Catalog struct {
	store  *refdata.Store
	engine *analysis.Engine
	sink   InsightSink

	defs   []*Definition
	byName map[string]*Definition

	archive *archiveCache
}

// NewCatalog registers the full tool set over the given reference data,
// analysis engine and sink. A nil sink disables the two persisting tools'
// side effects (they still return structured results).
func NewCatalog(store *refdata.Store, engine *analysis.Engine, sink InsightSink) *Catalog {
	c := &Catalog{
		store:   store,
		engine:  engine,
		sink:    sink,
		byName:  make(map[string]*Definition),
		archive: newArchiveCache(),
	}

	c.Register(c.diagnoseStrategicGap())
	c.Register(c.estimateProjectScope())
	c.Register(c.searchContentArchive())
	c.Register(c.getTeamContact())
	c.Register(c.initiateContactWorkflow())
	c.Register(c.logProjectInsight())
	c.Register(c.generateContentBlueprint())
	c.Register(c.recommendTechStack())
	c.Register(c.exploreKnowledgeBase())

	return c
}

// Register adds a definition to the trusted registry. Registry entries
// always shadow legacy custom tools of the same name.
func (c *Catalog) Register(def Definition) {
	def.Enabled = true
	d := &def
	c.defs = append(c.defs, d)
	c.byName[def.Name] = d
}

// Lookup resolves a tool by name. Disabled entries resolve but report so.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// Schemas returns the published function-declaration list in registration
// order, for handing to tool-calling providers.
func (c *Catalog) Schemas() []mcptypes.Tool {
	out := make([]mcptypes.Tool, 0, len(c.defs))
	for _, d := range c.defs {
		if d.Enabled {
			out = append(out, d.Schema)
		}
	}
	return out
}

// Engine exposes the analysis engine for the sandbox's legacy script path.
func (c *Catalog) Engine() *analysis.Engine { return c.engine }

// Store exposes the read-only reference data for the legacy script path.
func (c *Catalog) Store() *refdata.Store { return c.store }

func ObjectSchema(name, description string, properties map[string]any, required []string) mcptypes.Tool {
	return mcptypes.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcptypes.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}

// marshal renders a tool result. Marshaling these fixed shapes cannot fail in
// practice; an error degrades to a self-describing JSON error object.
func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to encode result: %s"}`, err), nil
	}
	return string(data), nil
}

func failure(msg, guidance string) (string, error) {
	return marshal(map[string]string{"error": msg, "guidance": guidance})
}

func stringArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func boolArg(args map[string]any, key string) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return false
}

func stringSliceArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
