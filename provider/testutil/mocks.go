// Package testutil provides fakes shared by provider and orchestrator tests.
package testutil

import (
	"context"

	"concierge/model"
)

// MockProvider implements model.Provider for testing. Each behavior can be
// overridden per test by replacing the corresponding Func field.
type MockProvider struct {
	CompleteFunc func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error)
	PingFunc     func(ctx context.Context) error

	Caps         model.Capabilities
	ProviderName string
	currentModel string

	// Requests records every CompletionRequest seen, in order.
	Requests []model.CompletionRequest
}

// NewMockProvider creates a mock with default implementations: every
// Complete call echoes a canned response, Ping succeeds.
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		ProviderName: "mock",
		currentModel: modelName,
		Caps:         model.Capabilities{ToolCalling: true, NativeSystemTurn: true},
	}
	mock.CompleteFunc = mock.defaultComplete
	mock.PingFunc = func(ctx context.Context) error { return nil }
	return mock
}

func (m *MockProvider) defaultComplete(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	return &model.Completion{Text: "Mock response"}, nil
}

func (m *MockProvider) Complete(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	m.Requests = append(m.Requests, req)
	return m.CompleteFunc(ctx, req)
}

func (m *MockProvider) Capabilities() model.Capabilities { return m.Caps }

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) Model() string { return m.currentModel }

func (m *MockProvider) SetModel(modelName string) { m.currentModel = modelName }

func (m *MockProvider) Ping(ctx context.Context) error { return m.PingFunc(ctx) }

// StaticIdentity is a model.Identity returning a fixed user (or error).
type StaticIdentity struct {
	User *model.User
	Err  error
}

func (s StaticIdentity) CurrentUser() (*model.User, error) { return s.User, s.Err }
