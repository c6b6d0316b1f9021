// Package chat owns the conversation: the append-only message history, the
// per-provider request/response/tool-call loop, retry with backoff, and
// cooperative cancellation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"concierge/logging"
	"concierge/model"
	"concierge/provider"
	"concierge/sandbox"
	"concierge/tools"
)

const (
	// historyWindow caps how many recent entries are sent to a provider.
	// The UI-facing history itself is unbounded.
	historyWindow = 20

	// maxToolTurns bounds tool-result round trips per user message.
	maxToolTurns = 5

	// maxAttempts is total provider attempts per turn (1 + 3 retries).
	maxAttempts = 4

	baseBackoff = time.Second
)

// navigatePseudoTool is intercepted by the orchestrator and never reaches
// the sandbox. It is always available regardless of catalog contents.
const navigatePseudoTool = "navigate_to_page"

// Sleeper waits between retry attempts. Injectable for tests.
type Sleeper func(d time.Duration)

// Recorder receives every message appended to the durable history.
// Implemented by the storage layer for transcript persistence.
type Recorder interface {
	Record(msg model.Message)
}

// Orchestrator drives one conversation against one provider. All exported
// methods are safe for concurrent use; SendMessage is single-flight.
type Orchestrator struct {
	provider model.Provider
	sandbox  *sandbox.Sandbox
	catalog  *tools.Catalog

	// ChangePage is invoked directly when the model requests navigation,
	// bypassing the sandbox. Nil disables navigation.
	ChangePage func(destination string)

	systemPrompt string
	temperature  float64
	maxTokens    int
	sleep        Sleeper
	recorder     Recorder

	mu       sync.Mutex
	history  []model.Message
	spending *model.SpendingInfo

	processing atomic.Bool
	aborted    atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSystemPrompt sets the persona prompt prepended to every exchange.
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) { o.systemPrompt = prompt }
}

// WithSampling sets temperature and the response token cap.
func WithSampling(temperature float64, maxTokens int) Option {
	return func(o *Orchestrator) {
		o.temperature = temperature
		o.maxTokens = maxTokens
	}
}

// WithSleeper replaces the retry backoff sleeper.
func WithSleeper(sleep Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithRecorder attaches a transcript recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithChangePage sets the navigation callback.
func WithChangePage(fn func(destination string)) Option {
	return func(o *Orchestrator) { o.ChangePage = fn }
}

// New creates an orchestrator for one conversation.
func New(p model.Provider, sb *sandbox.Sandbox, catalog *tools.Catalog, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: p,
		sandbox:  sb,
		catalog:  catalog,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ErrBusy is returned when a send arrives while another is in flight.
var ErrBusy = fmt.Errorf("a message is already being processed")

// SendMessage appends the user's text and drives the full exchange: the
// provider round trip, the tool-call loop for tool-calling providers, and
// retry with backoff on transient failures. It returns once the final
// message (or an error notice) has been appended.
//
// Single-flight: a second call while one is in progress returns ErrBusy
// without touching the history.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !o.processing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.processing.Store(false)
	o.aborted.Store(false)

	o.append(model.NewMessage(model.RoleUser, text))

	final, err := o.runExchange(ctx)

	// Cooperative cancellation: a provider result that already arrived is
	// processed, but nothing further is appended after an abort.
	if o.aborted.Load() {
		logging.Debug("exchange aborted, final message dropped")
		return nil
	}
	if err != nil {
		o.append(model.NewMessage(model.RoleSystem, o.noticeFor(err)))
		return err
	}
	o.append(final)
	return nil
}

// runExchange performs the provider turn loop and returns the final model
// message to append.
func (o *Orchestrator) runExchange(ctx context.Context) (model.Message, error) {
	caps := o.provider.Capabilities()

	working := o.window(caps)
	lastText := ""

	turns := 1
	if caps.ToolCalling {
		turns = maxToolTurns
	}

	for turn := 0; turn < turns; turn++ {
		if err := o.checkAbort(ctx); err != nil {
			return model.Message{}, err
		}

		completion, err := o.completeWithRetry(ctx, model.CompletionRequest{
			Messages:    working,
			Tools:       o.toolSchemas(caps),
			Temperature: o.temperature,
			MaxTokens:   o.maxTokens,
		})
		if err != nil {
			return model.Message{}, err
		}

		if completion.Spending != nil {
			o.setSpending(completion.Spending)
		}
		if completion.Text != "" {
			lastText = completion.Text
		}

		if len(completion.ToolCalls) == 0 {
			return model.NewMessage(model.RoleModel, completion.Text), nil
		}

		// Tool turn: record the model's calls, execute strictly in order,
		// and send the results back before reading the next response.
		callTurn := model.NewMessage(model.RoleModel, completion.Text)
		callTurn.ToolCalls = completion.ToolCalls
		o.append(callTurn)

		resultTurn := model.NewMessage(model.RoleUser, "")
		for _, call := range completion.ToolCalls {
			resultTurn.ToolResults = append(resultTurn.ToolResults, model.ToolResult{
				Name:   call.Name,
				Result: o.executeTool(ctx, call),
			})
		}
		o.append(resultTurn)

		working = append(working, callTurn, resultTurn)
	}

	// Turn budget exhausted without convergence: truncate to whatever text
	// was last produced rather than looping forever.
	logging.Warn("tool loop hit turn budget", zap.Int("turns", turns))
	if lastText == "" {
		lastText = "I wasn't able to finish the requested tool operations. Could you rephrase or narrow the request?"
	}
	return model.NewMessage(model.RoleModel, lastText), nil
}

// completeWithRetry calls the provider, retrying transient failures with
// exponential backoff (1s, 2s, 4s). The fourth transient failure, and any
// non-transient error, surface immediately.
func (o *Orchestrator) completeWithRetry(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := o.checkAbort(ctx); err != nil {
			return nil, err
		}

		completion, err := o.provider.Complete(ctx, req)
		if err == nil {
			return completion, nil
		}
		lastErr = err

		if !provider.IsTransient(err) || attempt == maxAttempts {
			break
		}

		delay := baseBackoff << (attempt - 1)
		logging.Debug("transient provider failure, backing off",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		o.sleep(delay)
	}
	return nil, lastErr
}

// executeTool dispatches one model-issued call. navigate_to_page is handled
// here and never reaches the sandbox; everything else goes through the
// two-tier dispatch. Failures come back as values, never as Go errors.
func (o *Orchestrator) executeTool(ctx context.Context, call model.ToolCall) any {
	if call.Name == navigatePseudoTool {
		destination, _ := call.Arguments["destination"].(string)
		if destination == "" {
			destination, _ = call.Arguments["page"].(string)
		}
		if o.ChangePage != nil {
			o.ChangePage(destination)
		}
		// Always reported as successful so the model can keep talking
		// about the page it just opened.
		return map[string]any{"status": "ok", "page": destination}
	}

	isCustom := false
	if _, ok := o.catalog.Lookup(call.Name); !ok {
		isCustom = true
	}
	return o.sandbox.Execute(ctx, call.Name, call.Arguments, sandbox.Options{IsCustom: isCustom})
}

// noticeFor renders a provider failure as the user-facing system notice.
// Spending and authorization problems get distinct messages.
func (o *Orchestrator) noticeFor(err error) string {
	if pe, ok := provider.AsError(err); ok {
		switch pe.Kind {
		case provider.KindSpendingLimit:
			if pe.Spending != nil {
				o.setSpending(pe.Spending)
				return fmt.Sprintf(
					"You've reached your spending limit ($%.2f of $%.2f). The limit resets at the start of the next billing period.",
					pe.Spending.Current, pe.Spending.Limit,
				)
			}
			return "You've reached your spending limit. The limit resets at the start of the next billing period."
		case provider.KindAuthRequired:
			return "You need to sign in before chatting. Please sign in and try again."
		}
	}
	if errors.Is(err, context.Canceled) {
		return "The request was cancelled."
	}
	return "Something went wrong talking to the model: " + err.Error()
}

// Abort requests cooperative cancellation of the in-flight exchange. The
// abort flag is checked before each provider call and tool execution; a
// result that already arrived is still processed, but no final message is
// appended.
func (o *Orchestrator) Abort() {
	o.aborted.Store(true)
}

func (o *Orchestrator) checkAbort(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.aborted.Load() {
		return context.Canceled
	}
	return nil
}

// Processing reports whether a send is in flight.
func (o *Orchestrator) Processing() bool {
	return o.processing.Load()
}

// History returns a copy of the full UI-facing history.
func (o *Orchestrator) History() []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.Message, len(o.history))
	copy(out, o.history)
	return out
}

// Spending returns the most recent budget snapshot seen from the provider,
// or nil when none has arrived yet.
func (o *Orchestrator) Spending() *model.SpendingInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.spending == nil {
		return nil
	}
	copied := *o.spending
	return &copied
}

// RefreshSpending re-fetches the budget snapshot for providers that expose
// one. Providers without spending limits return nil, nil.
func (o *Orchestrator) RefreshSpending(ctx context.Context) (*model.SpendingInfo, error) {
	fetcher, ok := o.provider.(interface {
		GetSpendingInfo(ctx context.Context) (*model.SpendingInfo, error)
	})
	if !ok {
		return nil, nil
	}
	info, err := fetcher.GetSpendingInfo(ctx)
	if err != nil {
		return nil, err
	}
	o.setSpending(info)
	return info, nil
}

// window builds the provider-bound copy of the history: the most recent
// entries up to the cap, with the persona prompt prepended. Providers that
// cannot take native system turns get no system entries at all; their
// adapters would drop them anyway, but the orchestrator guarantees it.
func (o *Orchestrator) window(caps model.Capabilities) []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := 0
	if len(o.history) > historyWindow {
		start = len(o.history) - historyWindow
	}

	out := make([]model.Message, 0, historyWindow+1)
	if o.systemPrompt != "" && caps.NativeSystemTurn {
		out = append(out, model.NewMessage(model.RoleSystem, o.systemPrompt))
	}
	for _, msg := range o.history[start:] {
		if msg.Role == model.RoleSystem && !caps.NativeSystemTurn {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (o *Orchestrator) toolSchemas(caps model.Capabilities) []mcptypes.Tool {
	if !caps.ToolCalling || o.catalog == nil {
		return nil
	}
	return o.catalog.Schemas()
}

func (o *Orchestrator) append(msg model.Message) {
	o.mu.Lock()
	o.history = append(o.history, msg)
	o.mu.Unlock()
	if o.recorder != nil {
		o.recorder.Record(msg)
	}
}

func (o *Orchestrator) setSpending(info *model.SpendingInfo) {
	copied := *info
	o.mu.Lock()
	o.spending = &copied
	o.mu.Unlock()
}
