// Package sandbox dispatches model-issued tool calls. Dispatch is two-tier
// and trusted-first: names in the in-process catalog run directly; only
// definitions explicitly flagged custom fall through to the legacy script
// path in script.go, which is the module's one trust boundary for
// operator-authored tools.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"concierge/logging"
	"concierge/tools"
)

// Options flags how a call should be dispatched.
type Options struct {
	// IsCustom routes the call to the legacy script path. Registry names
	// always win: a collision resolves to the trusted implementation.
	IsCustom bool
}

// Sandbox executes tool calls against the trusted catalog and the legacy
// custom-tool table.
type Sandbox struct {
	catalog *tools.Catalog
	legacy  map[string]LegacyDefinition
}

// New creates a sandbox over the trusted catalog.
func New(catalog *tools.Catalog) *Sandbox {
	return &Sandbox{
		catalog: catalog,
		legacy:  make(map[string]LegacyDefinition),
	}
}

// RegisterLegacy installs an operator-authored tool definition. Definitions
// whose name collides with a registry tool are still stored but will never
// execute; the registry implementation shadows them.
func (s *Sandbox) RegisterLegacy(def LegacyDefinition) {
	s.legacy[def.Name] = def
}

// Execute runs one tool call and returns its normalized result. Failures of
// any kind come back as {"error": message} values, never as Go errors, so the
// orchestrator can feed them to the model as ordinary tool results.
func (s *Sandbox) Execute(ctx context.Context, name string, args map[string]any, opts Options) any {
	// Trusted registry first. A name collision between the registry and a
	// legacy definition always resolves here.
	if def, ok := s.catalog.Lookup(name); ok {
		if !def.Enabled {
			return errResult(fmt.Sprintf("tool %q is disabled", name))
		}
		return s.runRegistry(def, args)
	}

	if !opts.IsCustom {
		return errResult(fmt.Sprintf("unknown tool %q", name))
	}

	def, ok := s.legacy[name]
	if !ok {
		return errResult(fmt.Sprintf("unknown custom tool %q", name))
	}
	if !def.Enabled {
		return errResult(fmt.Sprintf("custom tool %q is disabled", name))
	}

	logging.Debug("executing legacy tool", zap.String("tool", name))
	result, err := s.runScript(ctx, def, args)
	if err != nil {
		return errResult(err.Error())
	}
	return result
}

func (s *Sandbox) runRegistry(def *tools.Definition, args map[string]any) (result any) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("tool panicked", zap.String("tool", def.Name), zap.Any("panic", r))
			result = errResult(fmt.Sprintf("tool %s failed: %v", def.Name, r))
		}
	}()

	if err := validateArgs(def, args); err != nil {
		return errResult(err.Error())
	}

	raw, err := def.Fn(args)
	if err != nil {
		return errResult(err.Error())
	}
	return normalize(raw)
}

// validateArgs checks the call's arguments against the tool's published
// JSON schema, so implementations only ever see shapes they declared.
func validateArgs(def *tools.Definition, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	schemaLoader := gojsonschema.NewGoLoader(def.Schema.InputSchema)
	argsLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, argsLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return fmt.Errorf("invalid arguments for %s: %v", def.Name, msgs)
	}
	return nil
}

// normalize applies the catalog's result convention: strings that parse as
// JSON pass through as structures, other strings are wrapped, and
// non-string values are returned unchanged.
func normalize(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return map[string]any{"result": s}
	}
	return parsed
}

func errResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}
