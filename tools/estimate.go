package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

var complexityMultipliers = map[string]float64{
	"simple":   0.75,
	"moderate": 1.0,
	"complex":  1.5,
}

const rushMultiplier = 1.4

type serviceLine struct {
	Service  string  `json:"service"`
	Hours    int     `json:"hours"`
	BaseCost float64 `json:"base_cost"`
}

// estimateProjectScope prices requested services against the fixed cost
// table, applies complexity and rush multipliers, and reports a ±5% range.
func (c *Catalog) estimateProjectScope() Definition {
	return Definition{
		Name:        "estimate_project_scope",
		Description: "Estimate hours and cost for a set of studio services, with complexity and rush adjustments.",
		Schema: ObjectSchema(
			"estimate_project_scope",
			"Estimate hours and cost for a set of studio services, with complexity and rush adjustments.",
			map[string]any{
				"service_types": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Requested services, e.g. \"video production\", \"brand identity\".",
				},
				"complexity": map[string]any{
					"type":        "string",
					"enum":        []any{"simple", "moderate", "complex"},
					"description": "Overall project complexity; defaults to moderate.",
				},
				"rush": map[string]any{
					"type":        "boolean",
					"description": "True when the timeline requires a rush surcharge.",
				},
			},
			[]string{"service_types"},
		),
		Fn: func(args map[string]any) (string, error) {
			requested := stringSliceArg(args, "service_types")
			if len(requested) == 0 {
				return failure(
					"no services requested",
					"Ask which services the user needs and call again with at least one service type.",
				)
			}

			var breakdown []serviceLine
			var unknown []string
			totalHours := 0
			totalBase := 0.0
			for _, svc := range requested {
				key := strings.ToLower(strings.TrimSpace(svc))
				cost, ok := c.store.Costs[key]
				if !ok {
					unknown = append(unknown, svc)
					continue
				}
				breakdown = append(breakdown, serviceLine{Service: key, Hours: cost.Hours, BaseCost: cost.BaseCost})
				totalHours += cost.Hours
				totalBase += cost.BaseCost
			}

			if len(breakdown) == 0 {
				return failure(
					"none of the requested services are in the catalog",
					"Offer the available services: "+strings.Join(c.serviceNames(), ", ")+".",
				)
			}

			complexity := stringArg(args, "complexity")
			if complexity == "" {
				complexity = "moderate"
			}
			multiplier, ok := complexityMultipliers[complexity]
			if !ok {
				return failure(
					fmt.Sprintf("unknown complexity %q", complexity),
					"Use one of: simple, moderate, complex.",
				)
			}

			rush := boolArg(args, "rush")
			finalCost := totalBase * multiplier
			if rush {
				finalCost *= rushMultiplier
			}

			low := math.Round(finalCost * 0.95)
			high := math.Round(finalCost * 1.05)
			estHours := int(math.Round(float64(totalHours) * multiplier))

			return marshal(map[string]any{
				"breakdown":       breakdown,
				"unknown":         unknown,
				"complexity":      complexity,
				"rush":            rush,
				"estimated_hours": estHours,
				"final_cost":      finalCost,
				"range":           fmt.Sprintf("$%.0f–$%.0f", low, high),
				"next_step":       "Share the range with the user and offer to connect them with Client Partnerships for a formal quote.",
			})
		},
	}
}

func (c *Catalog) serviceNames() []string {
	names := make([]string, 0, len(c.store.Costs))
	for name := range c.store.Costs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
