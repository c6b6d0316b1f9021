package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Capabilities declares what a provider implementation can do. The
// orchestrator consults these flags instead of branching on provider names:
// the tool-call turn loop only runs when ToolCalling is set, and system-role
// notices are stripped from context when NativeSystemTurn is not.
type Capabilities struct {
	ToolCalling      bool
	SpendingLimits   bool
	NativeSystemTurn bool
}

// CompletionRequest carries one provider exchange: the windowed history,
// the published tool schemas (ignored by providers without tool calling)
// and sampling settings.
type CompletionRequest struct {
	Messages    []Message
	Tools       []mcptypes.Tool
	Temperature float64
	MaxTokens   int
}

// Completion is a provider's normalized answer. ToolCalls is non-empty only
// for tool-calling providers; Spending only for the intervised proxy.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
	Spending  *SpendingInfo
}

// Provider abstracts a chat-completion backend (intervised proxy, Anthropic,
// the multi-vendor adapter, local Ollama) behind provider-agnostic types.
//
// Defined in the model package rather than provider to avoid import cycles:
// implementations import model, and consumers of the interface need not
// import the provider package.
type Provider interface {
	// Complete sends the windowed history and returns the next model turn.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Capabilities reports the provider's feature set.
	Capabilities() Capabilities

	// Name returns the provider ID ("intervised", "anthropic", "multi", "ollama").
	Name() string

	// Model returns the active model name.
	Model() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks that the provider is reachable with current credentials.
	Ping(ctx context.Context) error
}
