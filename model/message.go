package model

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. The UI-facing history may contain all three; "system" here
// means an operator/status notice (errors, spending warnings), not a prompt.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// ToolCall is a provider-agnostic request, emitted by a model mid-response,
// to invoke a named catalog function with arguments.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"args"`
}

// ToolResult pairs a tool name with the structured result returned to the
// model on the next turn.
type ToolResult struct {
	Name   string `json:"name"`
	Result any    `json:"result"`
}

// Message is one entry in the conversation history. Immutable once appended.
type Message struct {
	ID          string       `json:"id"`
	Role        string       `json:"role"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// NewMessage builds a history entry with a fresh ID and the current time.
func NewMessage(role, text string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// SpendingInfo is a point-in-time read of a user's consumed vs. allotted
// budget against the intervised proxy. Not authoritative between calls.
type SpendingInfo struct {
	Current      float64 `json:"current"`
	Limit        float64 `json:"limit"`
	Remaining    float64 `json:"remaining"`
	IsUnderLimit bool    `json:"is_under_limit"`
}

// User is the identity capability handed to the orchestrator for
// spending-limit checks. Supplied by the out-of-scope auth layer.
type User struct {
	ID    string
	Email string
	Token string
}

// Identity resolves the current user. Implemented by the external
// authentication layer; a nil user means nobody is signed in.
type Identity interface {
	CurrentUser() (*User, error)
}
