package storage

import (
	"testing"

	"concierge/model"
)

func TestTranscriptSaveLoadList(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewTranscriptStore: %v", err)
	}

	transcript := &Transcript{
		Name:     "rebrand chat",
		Provider: "intervised",
		Model:    "gpt-4o-mini",
		Messages: []model.Message{
			model.NewMessage(model.RoleUser, "hi"),
			model.NewMessage(model.RoleModel, "hello"),
		},
	}
	if err := store.Save(transcript); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if transcript.ID == "" {
		t.Fatal("Save must assign an ID")
	}

	loaded, err := store.Load(transcript.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Messages) != 2 || loaded.Messages[0].Text != "hi" {
		t.Errorf("loaded = %+v", loaded)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].MessageCount != 2 {
		t.Errorf("list = %+v", list)
	}

	if err := store.Delete(transcript.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if list, _ := store.List(); len(list) != 0 {
		t.Error("transcript not deleted")
	}
}

func TestTranscriptPreservesToolTurns(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	callTurn := model.NewMessage(model.RoleModel, "")
	callTurn.ToolCalls = []model.ToolCall{
		{Name: "diagnose_strategic_gap", Arguments: map[string]any{"symptoms": []any{"stuck"}}},
	}
	transcript := &Transcript{Messages: []model.Message{callTurn}}
	if err := store.Save(transcript); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(transcript.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages[0].ToolCalls) != 1 {
		t.Error("tool calls lost in round trip")
	}
	if loaded.Messages[0].ToolCalls[0].Name != "diagnose_strategic_gap" {
		t.Errorf("tool call = %+v", loaded.Messages[0].ToolCalls[0])
	}
}

func TestTranscriptRecorder(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	rec := NewTranscriptRecorder(store, "test chat", "ollama", "llama3.1")
	rec.Record(model.NewMessage(model.RoleUser, "first"))
	rec.Record(model.NewMessage(model.RoleModel, "second"))

	if rec.TranscriptID() == "" {
		t.Fatal("recorder should have persisted and gotten an ID")
	}
	loaded, err := store.Load(rec.TranscriptID())
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("messages = %d, want 2", len(loaded.Messages))
	}
	if loaded.Provider != "ollama" {
		t.Errorf("provider = %q", loaded.Provider)
	}
}

func TestSearchTranscripts(t *testing.T) {
	store, err := NewTranscriptStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	transcript := &Transcript{
		Name: "launch talk",
		Messages: []model.Message{
			model.NewMessage(model.RoleUser, "I feel stuck on my Launch"),
			model.NewMessage(model.RoleSystem, "stuck system notice"),
			model.NewMessage(model.RoleModel, "let's unstick it"),
		},
	}
	if err := store.Save(transcript); err != nil {
		t.Fatal(err)
	}

	matches, err := store.SearchTranscripts("stuck")
	if err != nil {
		t.Fatalf("SearchTranscripts: %v", err)
	}
	// Case-insensitive, system notices excluded.
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	for _, m := range matches {
		if m.Role == model.RoleSystem {
			t.Error("system notices must not match")
		}
	}

	if matches, _ := store.SearchTranscripts(""); len(matches) != 0 {
		t.Error("empty query should match nothing")
	}
}

func TestInsightStore(t *testing.T) {
	store, err := NewInsightStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewInsightStore: %v", err)
	}
	defer store.Close()

	if err := store.LogInsight("client avoids launch dates", []string{"pattern", "launch"}); err != nil {
		t.Fatalf("LogInsight: %v", err)
	}
	insights, err := store.ListInsights()
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	if len(insights) != 1 || len(insights[0].Tags) != 2 {
		t.Errorf("insights = %+v", insights)
	}

	ref, err := store.RecordContact("Ada", "ada@example.com", "rebrand")
	if err != nil {
		t.Fatalf("RecordContact: %v", err)
	}
	if len(ref) < 4 || ref[:3] != "CW-" {
		t.Errorf("reference = %q", ref)
	}

	contacts, err := store.ListContacts()
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Reference != ref {
		t.Errorf("contacts = %+v", contacts)
	}
	if contacts[0].Email != "ada@example.com" {
		t.Errorf("email = %q", contacts[0].Email)
	}
}
