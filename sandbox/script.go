package sandbox

import (
	"context"
	"fmt"
	"strings"
)

// LegacyDefinition is an operator-authored tool carried over from the old
// catalog format. Code is NOT a general-purpose program: it is a short
// line-oriented script in the whitelisted language below. Nothing in it is
// ever compiled or evaluated as arbitrary code.
type LegacyDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Code        string
	Enabled     bool
}

// The legacy script language. One directive per line, '#' comments allowed:
//
//	analyze <argKey>          run the full analysis over a string argument
//	tone <argKey>             tone counts for a string argument
//	chains <argKey>           chain matches for a string argument
//	glossary <argKey>         glossary entries whose term appears in the argument
//	set <field> <text...>     set an output field to literal text; $key
//	                          interpolates a string argument
//	emit <field>              store the previous directive's value under field
//
// The script runs against the read-only reference store and the analysis
// engine's three exported operations; it can see its arguments and nothing
// else. This is the documented trust boundary for operator-authored tools.
func (s *Sandbox) runScript(ctx context.Context, def LegacyDefinition, args map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	var last any

	for lineNo, raw := range strings.Split(def.Code, "\n") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		directive := fields[0]
		rest := fields[1:]

		switch directive {
		case "analyze", "tone", "chains", "glossary":
			if len(rest) != 1 {
				return nil, scriptErr(def.Name, lineNo, "%s takes exactly one argument key", directive)
			}
			text, err := stringArgument(args, rest[0])
			if err != nil {
				return nil, scriptErr(def.Name, lineNo, "%v", err)
			}
			switch directive {
			case "analyze":
				last = s.catalog.Engine().Analyze(text)
			case "tone":
				last = s.catalog.Engine().ScoreTone(text)
			case "chains":
				last = s.catalog.Engine().MatchChains(text)
			case "glossary":
				last = s.glossaryMatches(text)
			}
			// Default output slot, so one-directive scripts need no emit.
			out[directive] = last

		case "set":
			if len(rest) < 2 {
				return nil, scriptErr(def.Name, lineNo, "set takes a field and text")
			}
			out[rest[0]] = interpolate(strings.Join(rest[1:], " "), args)
			last = out[rest[0]]

		case "emit":
			if len(rest) != 1 {
				return nil, scriptErr(def.Name, lineNo, "emit takes exactly one field")
			}
			if last == nil {
				return nil, scriptErr(def.Name, lineNo, "emit before any producing directive")
			}
			out[rest[0]] = last

		default:
			return nil, scriptErr(def.Name, lineNo, "directive %q is not whitelisted", directive)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("legacy tool %s produced no output", def.Name)
	}
	return out, nil
}

func (s *Sandbox) glossaryMatches(text string) []map[string]any {
	lower := strings.ToLower(text)
	var matches []map[string]any
	for _, term := range s.catalog.Store().Glossary {
		if strings.Contains(lower, strings.ToLower(term.Term)) {
			matches = append(matches, map[string]any{
				"term":       term.Term,
				"definition": term.Definition,
				"tags":       term.Tags,
			})
		}
	}
	return matches
}

func stringArgument(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string", key)
	}
	return s, nil
}

// interpolate replaces $key tokens with string arguments. Unknown keys are
// left in place so script bugs are visible in the output.
func interpolate(text string, args map[string]any) string {
	for key, value := range args {
		s, ok := value.(string)
		if !ok {
			continue
		}
		text = strings.ReplaceAll(text, "$"+key, s)
	}
	return text
}

func scriptErr(tool string, lineNo int, format string, args ...any) error {
	return fmt.Errorf("legacy tool %s line %d: %s", tool, lineNo+1, fmt.Sprintf(format, args...))
}
