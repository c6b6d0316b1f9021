package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge/analysis"
	"concierge/model"
	"concierge/provider"
	"concierge/provider/testutil"
	"concierge/refdata"
	"concierge/sandbox"
	"concierge/tools"
)

func newTestOrchestrator(t *testing.T, mock *testutil.MockProvider, opts ...Option) *Orchestrator {
	t.Helper()
	store := refdata.Default()
	engine := analysis.NewEngine(store)
	catalog := tools.NewCatalog(store, engine, nil)
	sb := sandbox.New(catalog)
	return New(mock, sb, catalog, opts...)
}

// recordingSleeper captures backoff delays instead of sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(d time.Duration) {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
}

func TestSendMessageAppendsUserAndModelTurns(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		return &model.Completion{Text: "hello back"}, nil
	}
	o := newTestOrchestrator(t, mock)

	require.NoError(t, o.SendMessage(context.Background(), "hello"))

	history := o.History()
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, model.RoleModel, history[1].Role)
	assert.Equal(t, "hello back", history[1].Text)
}

func TestBlankInputIsANoOp(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	o := newTestOrchestrator(t, mock)

	require.NoError(t, o.SendMessage(context.Background(), "   "))

	assert.Empty(t, o.History())
	assert.Empty(t, mock.Requests)
}

func TestProviderWindowIsCappedAtTwenty(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	o := newTestOrchestrator(t, mock)

	// Seed 30 prior entries directly.
	for i := 0; i < 30; i++ {
		o.append(model.NewMessage(model.RoleUser, "filler"))
	}

	require.NoError(t, o.SendMessage(context.Background(), "latest"))

	require.NotEmpty(t, mock.Requests)
	sent := mock.Requests[0].Messages
	assert.Len(t, sent, historyWindow)
	assert.Equal(t, "latest", sent[len(sent)-1].Text, "newest entry must be in the window")

	// The full history is unbounded: 30 seeded + user + model reply.
	assert.Len(t, o.History(), 32)
}

func TestSystemPromptCountsOutsideWindow(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	o := newTestOrchestrator(t, mock, WithSystemPrompt("you are the studio concierge"))

	require.NoError(t, o.SendMessage(context.Background(), "hi"))

	sent := mock.Requests[0].Messages
	require.Len(t, sent, 2)
	assert.Equal(t, model.RoleSystem, sent[0].Role)
	assert.Equal(t, model.RoleUser, sent[1].Role)
}

func TestSystemTurnsStrippedForNonNativeProviders(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.Caps = model.Capabilities{ToolCalling: false, NativeSystemTurn: false}
	o := newTestOrchestrator(t, mock, WithSystemPrompt("persona"))

	o.append(model.NewMessage(model.RoleSystem, "spending notice"))

	require.NoError(t, o.SendMessage(context.Background(), "hi"))

	for _, msg := range mock.Requests[0].Messages {
		assert.NotEqual(t, model.RoleSystem, msg.Role)
	}
}

func TestToolLoopExecutesAndReplaysResults(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	call := 0
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		call++
		if call == 1 {
			return &model.Completion{
				ToolCalls: []model.ToolCall{{
					Name: "get_team_contact",
					Arguments: map[string]any{
						"area": "video",
					},
				}},
			}, nil
		}
		// Second turn must carry the tool result back.
		last := req.Messages[len(req.Messages)-1]
		require.Len(t, last.ToolResults, 1)
		assert.Equal(t, "get_team_contact", last.ToolResults[0].Name)
		return &model.Completion{Text: "Devon handles video"}, nil
	}
	o := newTestOrchestrator(t, mock)

	require.NoError(t, o.SendMessage(context.Background(), "who does video?"))

	history := o.History()
	// user, model tool-call turn, tool-result turn, final model text
	require.Len(t, history, 4)
	assert.Len(t, history[1].ToolCalls, 1)
	assert.Len(t, history[2].ToolResults, 1)
	assert.Equal(t, "Devon handles video", history[3].Text)
}

func TestToolLoopCutsOffAtFiveTurns(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	calls := 0
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		calls++
		// A provider that never converges: always another tool call.
		return &model.Completion{
			Text:      "thinking...",
			ToolCalls: []model.ToolCall{{Name: "get_team_contact", Arguments: map[string]any{}}},
		}, nil
	}
	o := newTestOrchestrator(t, mock)

	require.NoError(t, o.SendMessage(context.Background(), "loop forever"))

	assert.Equal(t, maxToolTurns, calls, "must stop at exactly five turns")

	history := o.History()
	final := history[len(history)-1]
	assert.Equal(t, model.RoleModel, final.Role)
	assert.NotEmpty(t, final.Text, "cutoff must still produce a non-empty final message")
}

func TestNoToolLoopForNonToolProviders(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.Caps = model.Capabilities{ToolCalling: false, NativeSystemTurn: true}
	o := newTestOrchestrator(t, mock)

	require.NoError(t, o.SendMessage(context.Background(), "hi"))

	require.Len(t, mock.Requests, 1)
	assert.Nil(t, mock.Requests[0].Tools, "non-tool providers must not receive schemas")
}

func TestRetryBackoffEscalatesThenFails(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	attempts := 0
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		attempts++
		return nil, &provider.Error{Provider: "mock", Status: 429, Kind: provider.KindTransient, Message: "rate limited"}
	}
	sleeper := &recordingSleeper{}
	o := newTestOrchestrator(t, mock, WithSleeper(sleeper.sleep))

	err := o.SendMessage(context.Background(), "hi")
	require.Error(t, err)

	assert.Equal(t, maxAttempts, attempts, "three retries after the first attempt")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeper.delays)

	// The failure is recorded as a system notice, not lost.
	history := o.History()
	final := history[len(history)-1]
	assert.Equal(t, model.RoleSystem, final.Role)
}

func TestTransientRecoveryMidRetry(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	attempts := 0
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		attempts++
		if attempts < 3 {
			return nil, &provider.Error{Provider: "mock", Status: 503, Kind: provider.KindTransient, Message: "overloaded"}
		}
		return &model.Completion{Text: "finally"}, nil
	}
	sleeper := &recordingSleeper{}
	o := newTestOrchestrator(t, mock, WithSleeper(sleeper.sleep))

	require.NoError(t, o.SendMessage(context.Background(), "hi"))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
	assert.Equal(t, "finally", o.History()[1].Text)
}

func TestFatalErrorsAreNotRetried(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	attempts := 0
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		attempts++
		return nil, &provider.Error{Provider: "mock", Status: 400, Kind: provider.KindFatal, Message: "bad request"}
	}
	o := newTestOrchestrator(t, mock, WithSleeper(func(time.Duration) {
		t.Fatal("fatal errors must not back off")
	}))

	require.Error(t, o.SendMessage(context.Background(), "hi"))
	assert.Equal(t, 1, attempts)
}

func TestSpendingLimitNoticeAndSnapshot(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		return nil, &provider.Error{
			Provider: "intervised",
			Status:   402,
			Kind:     provider.KindSpendingLimit,
			Message:  "spending limit reached",
			Spending: &model.SpendingInfo{Current: 10, Limit: 10, Remaining: 0},
		}
	}
	o := newTestOrchestrator(t, mock)

	require.Error(t, o.SendMessage(context.Background(), "hi"))

	final := o.History()[1]
	assert.Equal(t, model.RoleSystem, final.Role)
	assert.Contains(t, final.Text, "spending limit")

	snapshot := o.Spending()
	require.NotNil(t, snapshot, "the limit error refreshes the cached snapshot")
	assert.Equal(t, 0.0, snapshot.Remaining)
}

func TestAuthRequiredNoticeIsDistinct(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		return nil, &provider.Error{Provider: "mock", Status: 401, Kind: provider.KindAuthRequired, Message: "no token"}
	}
	o := newTestOrchestrator(t, mock)

	require.Error(t, o.SendMessage(context.Background(), "hi"))

	final := o.History()[1]
	assert.Equal(t, model.RoleSystem, final.Role)
	assert.Contains(t, final.Text, "sign in")
	assert.NotContains(t, final.Text, "spending")
}

func TestNavigatePseudoToolBypassesSandbox(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	call := 0
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		call++
		if call == 1 {
			return &model.Completion{
				ToolCalls: []model.ToolCall{{
					Name:      "navigate_to_page",
					Arguments: map[string]any{"destination": "/portfolio"},
				}},
			}, nil
		}
		return &model.Completion{Text: "here's the portfolio"}, nil
	}

	var navigatedTo string
	o := newTestOrchestrator(t, mock, WithChangePage(func(destination string) {
		navigatedTo = destination
	}))

	require.NoError(t, o.SendMessage(context.Background(), "show me your work"))

	assert.Equal(t, "/portfolio", navigatedTo)

	// Reported back to the model as a successful tool result.
	resultTurn := o.History()[2]
	require.Len(t, resultTurn.ToolResults, 1)
	result, ok := resultTurn.ToolResults[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", result["status"])
}

func TestSingleFlightDoubleSend(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	started := make(chan struct{})
	release := make(chan struct{})
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		close(started)
		<-release
		return &model.Completion{Text: "done"}, nil
	}
	o := newTestOrchestrator(t, mock)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, o.SendMessage(context.Background(), "first"))
	}()

	<-started
	assert.True(t, o.Processing())
	err := o.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()

	// Exactly one user/model pair was appended.
	history := o.History()
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Text)
	assert.False(t, o.Processing())
}

func TestAbortSkipsFinalAppend(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	o := newTestOrchestrator(t, mock)
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		// Abort lands while the provider call is in flight; the returned
		// result is still processed but nothing is appended.
		o.Abort()
		return &model.Completion{Text: "too late"}, nil
	}

	require.NoError(t, o.SendMessage(context.Background(), "hi"))

	history := o.History()
	require.Len(t, history, 1, "only the user message survives an abort")
	assert.Equal(t, model.RoleUser, history[0].Role)
}

func TestAbortStopsRetryLoop(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	attempts := 0
	o := newTestOrchestrator(t, mock, WithSleeper(func(time.Duration) {}))
	mock.CompleteFunc = func(ctx context.Context, req model.CompletionRequest) (*model.Completion, error) {
		attempts++
		o.Abort()
		return nil, &provider.Error{Provider: "mock", Status: 429, Kind: provider.KindTransient, Message: "rate limited"}
	}

	require.NoError(t, o.SendMessage(context.Background(), "hi"))
	assert.Equal(t, 1, attempts, "abort is checked before each retry attempt")
}

type fakeRecorder struct {
	mu   sync.Mutex
	msgs []model.Message
}

func (f *fakeRecorder) Record(msg model.Message) {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
}

func TestRecorderSeesEveryAppend(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	rec := &fakeRecorder{}
	o := newTestOrchestrator(t, mock, WithRecorder(rec))

	require.NoError(t, o.SendMessage(context.Background(), "hi"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.msgs, 2)
}
