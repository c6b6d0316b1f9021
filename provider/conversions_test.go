package provider

import (
	"testing"

	"concierge/model"
)

func historyWithToolTurns() []model.Message {
	toolTurn := model.NewMessage(model.RoleModel, "")
	toolTurn.ToolCalls = []model.ToolCall{
		{Name: "estimate_project_scope", Arguments: map[string]any{"service_types": []any{"brand identity"}}},
	}
	resultTurn := model.NewMessage(model.RoleUser, "")
	resultTurn.ToolResults = []model.ToolResult{
		{Name: "estimate_project_scope", Result: map[string]any{"final_cost": 2520.0}},
	}

	return []model.Message{
		model.NewMessage(model.RoleSystem, "operator notice"),
		model.NewMessage(model.RoleUser, "how much for a rebrand?"),
		toolTurn,
		resultTurn,
		model.NewMessage(model.RoleModel, "around $2520"),
	}
}

func TestToAnthropicMessagesReplaysToolTurns(t *testing.T) {
	params, system := toAnthropicMessages(historyWithToolTurns())

	if len(system) != 1 || system[0].Text != "operator notice" {
		t.Errorf("system blocks = %+v", system)
	}
	// user, assistant tool use, user tool result, assistant text
	if len(params) != 4 {
		t.Fatalf("len(params) = %d, want 4", len(params))
	}
	wantRoles := []string{"user", "assistant", "user", "assistant"}
	for i, p := range params {
		if string(p.Role) != wantRoles[i] {
			t.Errorf("params[%d].Role = %s, want %s", i, p.Role, wantRoles[i])
		}
	}
}

func TestMultiAdapterDropsSystemAndToolTurns(t *testing.T) {
	history := historyWithToolTurns()

	openaiMsgs := toOpenAIMessages(history)
	if len(openaiMsgs) != 2 {
		t.Errorf("openai replay kept %d turns, want 2 (user + model text only)", len(openaiMsgs))
	}

	anthropicMsgs := toAnthropicTextMessages(history)
	if len(anthropicMsgs) != 2 {
		t.Errorf("anthropic-compatible replay kept %d turns, want 2", len(anthropicMsgs))
	}
}

func TestToOllamaMessages(t *testing.T) {
	msgs := toOllamaMessages(historyWithToolTurns())

	// system, user, assistant w/ tool call, tool result, assistant text
	if len(msgs) != 5 {
		t.Fatalf("len(msgs) = %d, want 5", len(msgs))
	}
	wantRoles := []string{"system", "user", "assistant", "tool", "assistant"}
	for i, m := range msgs {
		if m.Role != wantRoles[i] {
			t.Errorf("msgs[%d].Role = %s, want %s", i, m.Role, wantRoles[i])
		}
	}
	if len(msgs[2].ToolCalls) != 1 || msgs[2].ToolCalls[0].Function.Name != "estimate_project_scope" {
		t.Errorf("tool call not carried: %+v", msgs[2].ToolCalls)
	}
	if msgs[3].Content == "" {
		t.Error("tool result content should carry the marshaled result")
	}
}

func TestMarshalToolResult(t *testing.T) {
	if got := marshalToolResult("plain"); got != "plain" {
		t.Errorf("string result = %q", got)
	}
	if got := marshalToolResult(map[string]any{"ok": true}); got != `{"ok":true}` {
		t.Errorf("map result = %q", got)
	}
}
