package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"concierge/model"
	"concierge/tools"
)

const anthropicDefaultMaxTokens = 4096

// AnthropicProvider implements model.Provider against the official
// Anthropic API. This is the native function-calling branch: catalog
// schemas are published as tool params and tool-use blocks come back as
// structured model.ToolCalls.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider creates an Anthropic provider. The key may be the
// built-in studio key or a user-supplied one.
func NewAnthropicProvider(baseURL, apiKey, modelName string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	var anthropicModel anthropic.Model
	if modelName == "" {
		anthropicModel = anthropic.ModelClaudeSonnet4_5_20250929
	} else {
		anthropicModel = anthropic.Model(modelName)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropicModel,
		baseURL: baseURL,
	}, nil
}

// Complete implements model.Provider.
func (p *AnthropicProvider) Complete(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	messages, system := toAnthropicMessages(req.Messages)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = tools.ToAnthropicTools(req.Tools)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapAnthropicErr(err)
	}

	completion := &model.Completion{}
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			completion.Text += variant.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal(variant.Input, &args); err != nil {
				// Unparseable arguments; skip the call rather than fail the turn.
				continue
			}
			completion.ToolCalls = append(completion.ToolCalls, model.ToolCall{
				Name:      variant.Name,
				Arguments: args,
			})
		}
	}
	return completion, nil
}

func (p *AnthropicProvider) Capabilities() model.Capabilities {
	return model.Capabilities{
		ToolCalling:      true,
		SpendingLimits:   false,
		NativeSystemTurn: true,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Model() string { return string(p.model) }

func (p *AnthropicProvider) SetModel(modelName string) {
	p.model = anthropic.Model(modelName)
}

// Ping makes a minimal one-token request; Anthropic has no health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return wrapAnthropicErr(err)
	}
	return nil
}

// toAnthropicMessages converts history entries to Anthropic params.
// System notices become system blocks (Anthropic takes them as a separate
// parameter, not in the messages array). Tool calls and results are
// replayed as tool_use/tool_result blocks; the block IDs are regenerated
// from the tool name on replay, with pairing by position.
func toAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	params := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Text})

		case model.RoleModel:
			var content []anthropic.ContentBlockParamUnion
			if msg.Text != "" {
				content = append(content, anthropic.NewTextBlock(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				var input any = call.Arguments
				if call.Arguments == nil {
					input = map[string]any{}
				}
				content = append(content, anthropic.NewToolUseBlock(toolBlockID(call.Name), input, call.Name))
			}
			if len(content) > 0 {
				params = append(params, anthropic.NewAssistantMessage(content...))
			}

		default: // user, including tool-result turns
			if len(msg.ToolResults) > 0 {
				var content []anthropic.ContentBlockParamUnion
				for _, result := range msg.ToolResults {
					content = append(content, anthropic.NewToolResultBlock(
						toolBlockID(result.Name),
						marshalToolResult(result.Result),
						false,
					))
				}
				params = append(params, anthropic.NewUserMessage(content...))
				continue
			}
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}

	return params, systemBlocks
}

func toolBlockID(name string) string {
	return "call_" + name
}

func marshalToolResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}

func wrapAnthropicErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		e := statusError("anthropic", apierr.StatusCode, "API request failed")
		e.Err = err
		return e
	}
	return &Error{Provider: "anthropic", Kind: KindFatal, Message: "request failed", Err: err}
}
