package tools

import (
	"fmt"
	"strings"
)

var blueprintFormats = map[string][]string{
	"article": {
		"Hook: name the pain in the reader's words",
		"Stakes: what the pattern costs if it keeps running",
		"Shift: the reframe that makes the fix obvious",
		"Practice: one concrete change for this week",
		"Proof: a short client example",
	},
	"video": {
		"Cold open: show the symptom on screen",
		"Promise: what the viewer can fix in under two minutes",
		"Walkthrough: the three-step practice",
		"Call to action: where to go deeper",
	},
	"case_study": {
		"Before: the collapse signature in the wild",
		"Intervention: what the studio actually did",
		"After: the coherence signature, with numbers",
		"Lesson: what transfers to the reader's situation",
	},
}

// generateContentBlueprint assembles a section outline for a topic, informed
// by any behavioral patterns the analysis engine detects in it.
func (c *Catalog) generateContentBlueprint() Definition {
	return Definition{
		Name:        "generate_content_blueprint",
		Description: "Draft a structured content outline for a topic, format and audience.",
		Schema: ObjectSchema(
			"generate_content_blueprint",
			"Draft a structured content outline for a topic, format and audience.",
			map[string]any{
				"topic": map[string]any{
					"type":        "string",
					"description": "What the piece is about.",
				},
				"format": map[string]any{
					"type":        "string",
					"enum":        []any{"article", "video", "case_study"},
					"description": "Content format; defaults to article.",
				},
				"audience": map[string]any{
					"type":        "string",
					"description": "Who the piece is for.",
				},
			},
			[]string{"topic"},
		),
		Fn: func(args map[string]any) (string, error) {
			topic := strings.TrimSpace(stringArg(args, "topic"))
			if topic == "" {
				return failure("empty topic", "Ask what the piece should be about.")
			}

			format := stringArg(args, "format")
			if format == "" {
				format = "article"
			}
			sections, ok := blueprintFormats[format]
			if !ok {
				return failure(
					fmt.Sprintf("unknown format %q", format),
					"Use one of: article, video, case_study.",
				)
			}

			report := c.engine.Analyze(topic)
			var angle string
			if len(report.DetectedChains) > 0 {
				angle = "Frame around the " + report.DetectedChains[0].Name + " pattern."
			}

			audience := stringArg(args, "audience")
			if audience == "" {
				audience = "studio clients"
			}

			return marshal(map[string]any{
				"topic":     topic,
				"format":    format,
				"audience":  audience,
				"sections":  sections,
				"angle":     angle,
				"tone_read": report.EmotionalTone.Primary,
				"next_step": "Walk the user through the outline and ask which section to draft first.",
			})
		},
	}
}

// recommendTechStack matches a project type against the curated stack table.
func (c *Catalog) recommendTechStack() Definition {
	return Definition{
		Name:        "recommend_tech_stack",
		Description: "Recommend a technology stack for a project type.",
		Schema: ObjectSchema(
			"recommend_tech_stack",
			"Recommend a technology stack for a project type.",
			map[string]any{
				"project_type": map[string]any{
					"type":        "string",
					"description": "Kind of project, e.g. marketing site, web app, ecommerce, content platform.",
				},
				"constraints": map[string]any{
					"type":        "string",
					"description": "Optional constraints (budget, team size, hosting).",
				},
			},
			[]string{"project_type"},
		),
		Fn: func(args map[string]any) (string, error) {
			projectType := strings.ToLower(strings.TrimSpace(stringArg(args, "project_type")))
			if projectType == "" {
				return failure("empty project_type", "Ask what kind of project is being built.")
			}

			for _, option := range c.store.Stacks {
				if strings.Contains(projectType, option.ProjectType) ||
					strings.Contains(option.ProjectType, projectType) {
					return marshal(map[string]any{
						"project_type":   option.ProjectType,
						"stack":          option.Stack,
						"rationale":      option.Rationale,
						"constraints":    stringArg(args, "constraints"),
						"recommendation": "Start with " + option.Stack[0] + "; the rest of the stack follows from it.",
					})
				}
			}

			known := make([]string, len(c.store.Stacks))
			for i, option := range c.store.Stacks {
				known[i] = option.ProjectType
			}
			return failure(
				fmt.Sprintf("no curated stack for %q", projectType),
				"Offer the known project types: "+strings.Join(known, ", ")+".",
			)
		},
	}
}
