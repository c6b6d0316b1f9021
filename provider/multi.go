package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"concierge/model"
)

// Vendor selects the wire shape the multi-provider adapter speaks.
type Vendor string

const (
	VendorOpenAI    Vendor = "openai"    // any OpenAI-compatible endpoint
	VendorAzure     Vendor = "azure"     // Azure OpenAI deployment
	VendorAnthropic Vendor = "anthropic" // Anthropic-compatible endpoint
)

const azureAPIVersion = "2024-06-01"

// MultiProvider is the bring-your-own-key adapter covering three vendor
// shapes behind one implementation. It does not support tool calling:
// every exchange is a single request/response, and only user and model
// text turns are replayed into the outgoing history. System notices and
// prior tool calls/results are dropped from the replay.
type MultiProvider struct {
	vendor          Vendor
	model           string
	openaiClient    openai.Client
	anthropicClient *anthropic.Client
}

// MultiConfig configures the adapter. APIKey is always caller-supplied.
// AzureEndpoint and AzureDeployment apply to VendorAzure only.
type MultiConfig struct {
	Vendor          Vendor
	BaseURL         string
	APIKey          string
	Model           string
	AzureEndpoint   string
	AzureDeployment string
}

// NewMultiProvider creates the generic adapter for one vendor shape.
func NewMultiProvider(cfg MultiConfig) (*MultiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("multi-provider adapter requires a caller-supplied API key")
	}
	if cfg.Model == "" && cfg.Vendor != VendorAzure {
		return nil, fmt.Errorf("multi-provider adapter requires a model name")
	}

	p := &MultiProvider{vendor: cfg.Vendor, model: cfg.Model}

	switch cfg.Vendor {
	case VendorOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		p.openaiClient = openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(cfg.APIKey),
		)

	case VendorAzure:
		if cfg.AzureEndpoint == "" || cfg.AzureDeployment == "" {
			return nil, fmt.Errorf("Azure vendor requires endpoint and deployment")
		}
		// Azure routes by deployment and authenticates with an api-key
		// header instead of a bearer token.
		p.openaiClient = openai.NewClient(
			option.WithBaseURL(cfg.AzureEndpoint+"/openai/deployments/"+cfg.AzureDeployment),
			option.WithHeader("api-key", cfg.APIKey),
			option.WithQuery("api-version", azureAPIVersion),
		)
		if p.model == "" {
			p.model = cfg.AzureDeployment
		}

	case VendorAnthropic:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.anthropic.com"
		}
		client := anthropic.NewClient(
			anthropicoption.WithBaseURL(baseURL),
			anthropicoption.WithAPIKey(cfg.APIKey),
		)
		p.anthropicClient = &client

	default:
		return nil, fmt.Errorf("unknown vendor shape: %s", cfg.Vendor)
	}

	return p, nil
}

// Complete implements model.Provider. Tool schemas in the request are
// ignored; the orchestrator never runs the tool loop for this provider.
func (p *MultiProvider) Complete(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	if p.vendor == VendorAnthropic {
		return p.completeAnthropic(ctx, req)
	}
	return p.completeOpenAI(ctx, req)
}

func (p *MultiProvider) completeOpenAI(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.wrapOpenAIErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: p.Name(), Kind: KindFatal, Message: "response contained no choices"}
	}
	return &model.Completion{Text: resp.Choices[0].Message.Content}, nil
}

func (p *MultiProvider) completeAnthropic(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		Messages:  toAnthropicTextMessages(req.Messages),
		MaxTokens: int64(maxTokens),
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := p.anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, p.wrapMultiAnthropicErr(err)
	}

	text := ""
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}
	return &model.Completion{Text: text}, nil
}

func (p *MultiProvider) Capabilities() model.Capabilities {
	return model.Capabilities{
		ToolCalling:      false,
		SpendingLimits:   false,
		NativeSystemTurn: false,
	}
}

func (p *MultiProvider) Name() string { return "multi/" + string(p.vendor) }

func (p *MultiProvider) Model() string { return p.model }

func (p *MultiProvider) SetModel(modelName string) { p.model = modelName }

// Ping checks reachability with the cheapest call each vendor offers.
func (p *MultiProvider) Ping(ctx context.Context) error {
	if p.vendor == VendorAnthropic {
		_, err := p.anthropicClient.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: 1,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
			},
		})
		if err != nil {
			return p.wrapMultiAnthropicErr(err)
		}
		return nil
	}

	_, err := p.openaiClient.Models.List(ctx)
	if err != nil {
		return p.wrapOpenAIErr(err)
	}
	return nil
}

// toOpenAIMessages replays user and model text turns only.
func toOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			out = append(out, openai.UserMessage(msg.Text))
		case model.RoleModel:
			out = append(out, openai.AssistantMessage(msg.Text))
		}
	}
	return out
}

// toAnthropicTextMessages is the same text-only replay for the
// Anthropic-compatible shape.
func toAnthropicTextMessages(messages []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		case model.RoleModel:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}
	return out
}

func (p *MultiProvider) wrapOpenAIErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		e := statusError(p.Name(), apierr.StatusCode, "API request failed")
		e.Err = err
		return e
	}
	return &Error{Provider: p.Name(), Kind: KindFatal, Message: "request failed", Err: err}
}

func (p *MultiProvider) wrapMultiAnthropicErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		e := statusError(p.Name(), apierr.StatusCode, "API request failed")
		e.Err = err
		return e
	}
	return &Error{Provider: p.Name(), Kind: KindFatal, Message: "request failed", Err: err}
}
