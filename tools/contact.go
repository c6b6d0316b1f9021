package tools

import (
	"strings"
)

// getTeamContact routes a topic area to the right team member.
func (c *Catalog) getTeamContact() Definition {
	return Definition{
		Name:        "get_team_contact",
		Description: "Find the team member responsible for a given area of work.",
		Schema: ObjectSchema(
			"get_team_contact",
			"Find the team member responsible for a given area of work.",
			map[string]any{
				"area": map[string]any{
					"type":        "string",
					"description": "Area of interest, e.g. brand, video, strategy, web. Omit for the general contact.",
				},
			},
			nil,
		),
		Fn: func(args map[string]any) (string, error) {
			area := strings.ToLower(strings.TrimSpace(stringArg(args, "area")))
			if area == "" {
				area = "general"
			}

			for _, contact := range c.store.Team {
				if contact.Area == area {
					return marshal(map[string]any{
						"name":      contact.Name,
						"role":      contact.Role,
						"email":     contact.Email,
						"area":      contact.Area,
						"next_step": "Offer to start a contact workflow with " + contact.Name + ".",
					})
				}
			}

			// Unknown areas fall back to the general contact rather than failing.
			for _, contact := range c.store.Team {
				if contact.Area == "general" {
					return marshal(map[string]any{
						"name":      contact.Name,
						"role":      contact.Role,
						"email":     contact.Email,
						"area":      contact.Area,
						"note":      "no dedicated contact for area " + area + "; routing to partnerships",
						"next_step": "Offer to start a contact workflow with " + contact.Name + ".",
					})
				}
			}

			return failure("no contacts configured", "Check the team reference table.")
		},
	}
}

// initiateContactWorkflow records a lead through the external sink and
// returns a reference the model can quote back to the user.
func (c *Catalog) initiateContactWorkflow() Definition {
	return Definition{
		Name:        "initiate_contact_workflow",
		Description: "Open a contact workflow so the team follows up with the user.",
		Schema: ObjectSchema(
			"initiate_contact_workflow",
			"Open a contact workflow so the team follows up with the user.",
			map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "The user's name.",
				},
				"email": map[string]any{
					"type":        "string",
					"description": "Address the team should reply to.",
				},
				"topic": map[string]any{
					"type":        "string",
					"description": "What the follow-up is about.",
				},
			},
			[]string{"name", "email", "topic"},
		),
		Fn: func(args map[string]any) (string, error) {
			name := strings.TrimSpace(stringArg(args, "name"))
			email := strings.TrimSpace(stringArg(args, "email"))
			topic := strings.TrimSpace(stringArg(args, "topic"))

			if name == "" || email == "" || topic == "" {
				return failure(
					"name, email and topic are all required",
					"Collect the missing fields from the user before calling again.",
				)
			}
			if !strings.Contains(email, "@") {
				return failure(
					"email address looks invalid",
					"Confirm the address with the user; it must contain an @.",
				)
			}

			reference := ""
			if c.sink != nil {
				ref, err := c.sink.RecordContact(name, email, topic)
				if err != nil {
					return failure(
						"could not record the contact request: "+err.Error(),
						"Apologize and give the user the direct address of Client Partnerships instead.",
					)
				}
				reference = ref
			}

			return marshal(map[string]any{
				"status":    "recorded",
				"reference": reference,
				"topic":     topic,
				"next_step": "Tell the user the team will reach out at " + email + " and quote the reference number.",
			})
		},
	}
}

// logProjectInsight appends a tagged observation to the insight log.
func (c *Catalog) logProjectInsight() Definition {
	return Definition{
		Name:        "log_project_insight",
		Description: "Record an observation about the user's project for the team to review.",
		Schema: ObjectSchema(
			"log_project_insight",
			"Record an observation about the user's project for the team to review.",
			map[string]any{
				"insight": map[string]any{
					"type":        "string",
					"description": "The observation worth keeping.",
				},
				"tags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Optional classification tags.",
				},
			},
			[]string{"insight"},
		),
		Fn: func(args map[string]any) (string, error) {
			insight := strings.TrimSpace(stringArg(args, "insight"))
			if insight == "" {
				return failure(
					"empty insight",
					"Summarize the observation in a sentence before logging it.",
				)
			}

			tags := stringSliceArg(args, "tags")
			if c.sink != nil {
				if err := c.sink.LogInsight(insight, tags); err != nil {
					return failure(
						"could not persist the insight: "+err.Error(),
						"Continue the conversation; the note was not saved.",
					)
				}
			}

			return marshal(map[string]any{
				"status":    "logged",
				"tags":      tags,
				"next_step": "Continue the conversation; the note is saved for the team.",
			})
		},
	}
}
