package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"concierge/logging"
	"concierge/model"
)

const intervisedMaxBody = 1 << 20 // 1 MiB response cap

// IntervisedProvider talks to the first-party relay that fronts a hosted
// model on the studio's account. The caller never holds a vendor API key;
// requests are authorized by the signed-in user's token and the server
// enforces a per-user spending ceiling, returning the remaining budget with
// every response.
type IntervisedProvider struct {
	httpClient *http.Client
	baseURL    string
	model      string
	identity   model.Identity

	mu       sync.Mutex
	spending *model.SpendingInfo
}

// NewIntervisedProvider creates the proxy-backed provider. identity is
// required; the relay rejects anonymous calls.
func NewIntervisedProvider(baseURL, modelName string, identity model.Identity) (*IntervisedProvider, error) {
	if baseURL == "" {
		baseURL = "https://relay.intervised.dev"
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	if identity == nil {
		return nil, fmt.Errorf("intervised provider requires an identity source")
	}

	return &IntervisedProvider{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      modelName,
		identity:   identity,
	}, nil
}

type intervisedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type intervisedRequest struct {
	Messages    []intervisedMessage `json:"messages"`
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"maxTokens"`
}

type intervisedResponse struct {
	Content  string              `json:"content"`
	Spending *model.SpendingInfo `json:"spending"`
}

// Complete implements model.Provider. The relay speaks a plain
// chat-completions shape with no tool support; tool schemas in the request
// are ignored.
func (p *IntervisedProvider) Complete(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	user, err := p.currentUser()
	if err != nil {
		return nil, err
	}

	wire := intervisedRequest{
		Model:       p.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, msg := range req.Messages {
		wire.Messages = append(wire.Messages, intervisedMessage{
			Role:    wireRole(msg.Role),
			Content: msg.Text,
		})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encoding intervised request: %w", err)
	}

	payload, status, err := p.post(ctx, "/v1/chat", user.Token, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, p.statusError(status, payload)
	}

	var out intervisedResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, &Error{
			Provider: "intervised",
			Kind:     KindFatal,
			Message:  "malformed relay response",
			Err:      err,
		}
	}
	if out.Spending != nil {
		p.setSpending(out.Spending)
	}

	return &model.Completion{Text: out.Content, Spending: out.Spending}, nil
}

// GetSpendingInfo re-fetches the budget snapshot from the relay and updates
// the cached copy.
func (p *IntervisedProvider) GetSpendingInfo(ctx context.Context) (*model.SpendingInfo, error) {
	user, err := p.currentUser()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/spending", nil)
	if err != nil {
		return nil, fmt.Errorf("building spending request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+user.Token)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Provider: "intervised", Kind: KindFatal, Message: "spending fetch failed", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, intervisedMaxBody))
	if err != nil {
		return nil, fmt.Errorf("reading spending response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp.StatusCode, payload)
	}

	var info model.SpendingInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("decoding spending snapshot: %w", err)
	}
	p.setSpending(&info)
	return &info, nil
}

// Spending returns the cached snapshot from the most recent exchange, or
// nil before the first one. Not authoritative between calls.
func (p *IntervisedProvider) Spending() *model.SpendingInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spending == nil {
		return nil
	}
	copied := *p.spending
	return &copied
}

func (p *IntervisedProvider) Capabilities() model.Capabilities {
	return model.Capabilities{
		ToolCalling:      false,
		SpendingLimits:   true,
		NativeSystemTurn: true,
	}
}

func (p *IntervisedProvider) Name() string { return "intervised" }

func (p *IntervisedProvider) Model() string { return p.model }

func (p *IntervisedProvider) SetModel(modelName string) { p.model = modelName }

// Ping verifies reachability and credentials via the spending endpoint.
func (p *IntervisedProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := p.GetSpendingInfo(ctx)
	return err
}

func (p *IntervisedProvider) currentUser() (*model.User, error) {
	user, err := p.identity.CurrentUser()
	if err != nil {
		return nil, &Error{Provider: "intervised", Kind: KindAuthRequired, Message: "identity lookup failed", Err: err}
	}
	if user == nil {
		return nil, &Error{Provider: "intervised", Kind: KindAuthRequired, Message: "no signed-in user"}
	}
	return user, nil
}

func (p *IntervisedProvider) post(ctx context.Context, path, token string, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("building intervised request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	// No HTTP status observed: connection refused, DNS, timeout. Only 429
	// and 503 are retried, so transport failures surface immediately.
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, &Error{Provider: "intervised", Kind: KindFatal, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, intervisedMaxBody))
	if err != nil {
		return nil, 0, fmt.Errorf("reading intervised response: %w", err)
	}
	return payload, resp.StatusCode, nil
}

// statusError maps a non-200 relay response. A 402 body carries the
// spending snapshot that tripped the ceiling; keep it on the error so the
// orchestrator can show current-vs-limit without another round trip.
func (p *IntervisedProvider) statusError(status int, body []byte) *Error {
	e := statusError("intervised", status, "")
	switch e.Kind {
	case KindSpendingLimit:
		e.Message = "spending limit reached"
		var out intervisedResponse
		if json.Unmarshal(body, &out) == nil && out.Spending != nil {
			p.setSpending(out.Spending)
		}
		e.Spending = p.Spending()
	case KindAuthRequired:
		e.Message = "authorization required"
	case KindTransient:
		e.Message = "relay temporarily unavailable"
	default:
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg == "" {
			msg = "unexpected relay response"
		}
		e.Message = msg
	}
	logging.Warn("intervised request failed",
		zap.Int("status", status),
		zap.String("kind", string(e.Kind)),
	)
	return e
}

func (p *IntervisedProvider) setSpending(info *model.SpendingInfo) {
	copied := *info
	p.mu.Lock()
	p.spending = &copied
	p.mu.Unlock()
}

// wireRole maps history roles onto the relay's chat-completions roles.
func wireRole(role string) string {
	if role == model.RoleModel {
		return "assistant"
	}
	return role
}
