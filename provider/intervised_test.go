package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"concierge/model"
	"concierge/provider/testutil"
)

func testIdentity() testutil.StaticIdentity {
	return testutil.StaticIdentity{
		User: &model.User{ID: "u1", Email: "june@example.com", Token: "tok-123"},
	}
}

func TestIntervisedComplete(t *testing.T) {
	var gotReq intervisedRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(intervisedResponse{
			Content: "hello there",
			Spending: &model.SpendingInfo{
				Current: 2.5, Limit: 10, Remaining: 7.5, IsUnderLimit: true,
			},
		})
	}))
	defer server.Close()

	p, err := NewIntervisedProvider(server.URL, "test-model", testIdentity())
	if err != nil {
		t.Fatalf("NewIntervisedProvider: %v", err)
	}

	completion, err := p.Complete(context.Background(), model.CompletionRequest{
		Messages: []model.Message{
			model.NewMessage(model.RoleSystem, "be nice"),
			model.NewMessage(model.RoleUser, "hi"),
			model.NewMessage(model.RoleModel, "hello"),
		},
		Temperature: 0.7,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if completion.Text != "hello there" {
		t.Errorf("Text = %q", completion.Text)
	}
	if completion.Spending == nil || completion.Spending.Remaining != 7.5 {
		t.Errorf("Spending = %+v", completion.Spending)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "test-model" || gotReq.MaxTokens != 256 {
		t.Errorf("request = %+v", gotReq)
	}

	// History roles map onto chat-completions roles.
	roles := make([]string, len(gotReq.Messages))
	for i, m := range gotReq.Messages {
		roles[i] = m.Role
	}
	want := []string{"system", "user", "assistant"}
	for i := range want {
		if roles[i] != want[i] {
			t.Errorf("role[%d] = %q, want %q", i, roles[i], want[i])
		}
	}

	// Snapshot is cached for later reads.
	if cached := p.Spending(); cached == nil || cached.Current != 2.5 {
		t.Errorf("cached spending = %+v", cached)
	}
}

func TestIntervisedSpendingLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(intervisedResponse{
			Spending: &model.SpendingInfo{Current: 10, Limit: 10, Remaining: 0},
		})
	}))
	defer server.Close()

	p, _ := NewIntervisedProvider(server.URL, "", testIdentity())
	_, err := p.Complete(context.Background(), model.CompletionRequest{
		Messages: []model.Message{model.NewMessage(model.RoleUser, "hi")},
	})

	if !IsSpendingLimit(err) {
		t.Fatalf("expected spending-limit error, got %v", err)
	}
	pe, _ := AsError(err)
	if pe.Spending == nil || pe.Spending.Remaining != 0 {
		t.Errorf("error should carry the snapshot that tripped the ceiling, got %+v", pe.Spending)
	}
}

func TestIntervisedStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{401, IsAuthRequired, "auth"},
		{429, IsTransient, "rate limit"},
		{503, IsTransient, "unavailable"},
		{500, func(err error) bool {
			pe, ok := AsError(err)
			return ok && pe.Kind == KindFatal
		}, "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			p, _ := NewIntervisedProvider(server.URL, "", testIdentity())
			_, err := p.Complete(context.Background(), model.CompletionRequest{
				Messages: []model.Message{model.NewMessage(model.RoleUser, "hi")},
			})
			if err == nil || !tt.check(err) {
				t.Errorf("status %d mapped wrong: %v", tt.status, err)
			}
		})
	}
}

func TestIntervisedConnectionFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	p, _ := NewIntervisedProvider(server.URL, "", testIdentity())
	_, err := p.Complete(context.Background(), model.CompletionRequest{
		Messages: []model.Message{model.NewMessage(model.RoleUser, "hi")},
	})
	if err == nil {
		t.Fatal("expected an error against a closed server")
	}
	if IsTransient(err) {
		t.Fatalf("connection failure must not be retried: %v", err)
	}
	pe, ok := AsError(err)
	if !ok || pe.Kind != KindFatal || pe.Status != 0 {
		t.Errorf("error = %+v, want fatal with no status", pe)
	}
}

func TestIntervisedRequiresSignedInUser(t *testing.T) {
	p, err := NewIntervisedProvider("http://localhost:1", "", testutil.StaticIdentity{})
	if err != nil {
		t.Fatalf("NewIntervisedProvider: %v", err)
	}
	_, err = p.Complete(context.Background(), model.CompletionRequest{
		Messages: []model.Message{model.NewMessage(model.RoleUser, "hi")},
	})
	if !IsAuthRequired(err) {
		t.Fatalf("expected auth-required with no user, got %v", err)
	}
}

func TestIntervisedGetSpendingInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		json.NewEncoder(w).Encode(model.SpendingInfo{
			Current: 4, Limit: 10, Remaining: 6, IsUnderLimit: true,
		})
	}))
	defer server.Close()

	p, _ := NewIntervisedProvider(server.URL, "", testIdentity())
	info, err := p.GetSpendingInfo(context.Background())
	if err != nil {
		t.Fatalf("GetSpendingInfo: %v", err)
	}
	if info.Remaining != 6 || !info.IsUnderLimit {
		t.Errorf("info = %+v", info)
	}
	if cached := p.Spending(); cached == nil || cached.Current != 4 {
		t.Errorf("cache not refreshed: %+v", cached)
	}
}

func TestIntervisedCapabilities(t *testing.T) {
	p, _ := NewIntervisedProvider("http://localhost:1", "", testIdentity())
	caps := p.Capabilities()
	if caps.ToolCalling {
		t.Error("intervised relay does not support tool calling")
	}
	if !caps.SpendingLimits {
		t.Error("intervised relay enforces spending limits")
	}
}
