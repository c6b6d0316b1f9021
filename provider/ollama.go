package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"concierge/model"
	"concierge/tools"
)

// OllamaProvider runs against a local Ollama server. Tool calling is
// native for models that support it.
type OllamaProvider struct {
	client  *api.Client
	model   string
	baseURL string
}

// NewOllamaProvider creates a provider for a local Ollama server.
func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client:  api.NewClient(parsedURL, http.DefaultClient),
		model:   modelName,
		baseURL: baseURL,
	}, nil
}

// Complete implements model.Provider with a single non-streaming exchange.
func (p *OllamaProvider) Complete(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	chatReq := &api.ChatRequest{
		Model:    p.model,
		Messages: toOllamaMessages(req.Messages),
		Stream:   func(b bool) *bool { return &b }(false),
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = tools.ToOllamaTools(req.Tools)
	}
	if req.Temperature > 0 {
		chatReq.Options = map[string]any{"temperature": req.Temperature}
	}

	completion := &model.Completion{}
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		completion.Text += resp.Message.Content
		for _, call := range resp.Message.ToolCalls {
			completion.ToolCalls = append(completion.ToolCalls, model.ToolCall{
				Name:      call.Function.Name,
				Arguments: map[string]any(call.Function.Arguments),
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapOllamaErr(err)
	}
	return completion, nil
}

func (p *OllamaProvider) Capabilities() model.Capabilities {
	return model.Capabilities{
		ToolCalling:      true,
		SpendingLimits:   false,
		NativeSystemTurn: true,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Model() string { return p.model }

func (p *OllamaProvider) SetModel(modelName string) { p.model = modelName }

// ListModels returns the models available on the local server.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.Name
	}
	return names, nil
}

func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := p.client.List(ctx)
	if err != nil {
		return wrapOllamaErr(err)
	}
	return nil
}

// toOllamaMessages converts history entries to the Ollama chat format.
// Tool results become role "tool" messages.
func toOllamaMessages(messages []model.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleModel:
			apiMsg := api.Message{Role: "assistant", Content: msg.Text}
			for _, call := range msg.ToolCalls {
				apiMsg.ToolCalls = append(apiMsg.ToolCalls, api.ToolCall{
					Function: api.ToolCallFunction{
						Name:      call.Name,
						Arguments: api.ToolCallFunctionArguments(call.Arguments),
					},
				})
			}
			out = append(out, apiMsg)
		default:
			if len(msg.ToolResults) > 0 {
				for _, result := range msg.ToolResults {
					out = append(out, api.Message{
						Role:    "tool",
						Content: marshalToolResult(result.Result),
					})
				}
				continue
			}
			out = append(out, api.Message{Role: msg.Role, Content: msg.Text})
		}
	}
	return out
}

func wrapOllamaErr(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		e := statusError("ollama", statusErr.StatusCode, statusErr.ErrorMessage)
		e.Err = err
		return e
	}
	return &Error{Provider: "ollama", Kind: KindFatal, Message: "request failed", Err: err}
}
