// Package storage persists conversation transcripts and the insight log.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"concierge/logging"
	"concierge/model"
)

// Transcript is one persisted conversation.
type Transcript struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Messages     []model.Message `json:"messages"`
	SystemPrompt string          `json:"system_prompt,omitempty"`
}

// TranscriptMetadata is the lightweight listing shape.
type TranscriptMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// TranscriptStore persists transcripts as per-conversation JSON files.
type TranscriptStore struct {
	transcriptsDir string
}

// NewTranscriptStore creates the store under dataDir.
func NewTranscriptStore(dataDir string) (*TranscriptStore, error) {
	transcriptsDir := filepath.Join(dataDir, "transcripts")
	if err := os.MkdirAll(transcriptsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}
	return &TranscriptStore{transcriptsDir: transcriptsDir}, nil
}

// Save writes a transcript to disk, assigning an ID if needed.
func (s *TranscriptStore) Save(transcript *Transcript) error {
	if transcript.ID == "" {
		transcript.ID = uuid.New().String()
	}
	transcript.UpdatedAt = time.Now()
	if transcript.CreatedAt.IsZero() {
		transcript.CreatedAt = transcript.UpdatedAt
	}

	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	// 0600: transcripts are conversation history.
	path := filepath.Join(s.transcriptsDir, transcript.ID+".json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write transcript file: %w", err)
	}
	return nil
}

// Load reads one transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(filepath.Join(s.transcriptsDir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &transcript, nil
}

// List returns metadata for every transcript, newest first. Corrupted
// files are skipped.
func (s *TranscriptStore) List() ([]TranscriptMetadata, error) {
	entries, err := os.ReadDir(s.transcriptsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var transcripts []TranscriptMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.transcriptsDir, entry.Name()))
		if err != nil {
			continue
		}
		var transcript Transcript
		if err := json.Unmarshal(data, &transcript); err != nil {
			continue
		}
		transcripts = append(transcripts, TranscriptMetadata{
			ID:           transcript.ID,
			Name:         transcript.Name,
			Provider:     transcript.Provider,
			Model:        transcript.Model,
			CreatedAt:    transcript.CreatedAt,
			UpdatedAt:    transcript.UpdatedAt,
			MessageCount: len(transcript.Messages),
		})
	}

	sort.Slice(transcripts, func(i, j int) bool {
		return transcripts[i].UpdatedAt.After(transcripts[j].UpdatedAt)
	})
	return transcripts, nil
}

// Delete removes a transcript from disk.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(filepath.Join(s.transcriptsDir, id+".json")); err != nil {
		return fmt.Errorf("failed to delete transcript file: %w", err)
	}
	return nil
}

// TranscriptRecorder implements the orchestrator's Recorder by appending
// each message to one transcript and writing it through.
type TranscriptRecorder struct {
	store      *TranscriptStore
	transcript *Transcript
}

// NewTranscriptRecorder starts recording into a fresh transcript.
func NewTranscriptRecorder(store *TranscriptStore, name, providerName, modelName string) *TranscriptRecorder {
	return &TranscriptRecorder{
		store: store,
		transcript: &Transcript{
			Name:     name,
			Provider: providerName,
			Model:    modelName,
		},
	}
}

// Record appends msg and persists. A write failure is logged, not
// propagated; the conversation must not stall on disk problems.
func (r *TranscriptRecorder) Record(msg model.Message) {
	r.transcript.Messages = append(r.transcript.Messages, msg)
	if err := r.store.Save(r.transcript); err != nil {
		logging.Error("failed to persist transcript", zap.Error(err))
	}
}

// TranscriptID returns the recorded transcript's ID once assigned.
func (r *TranscriptRecorder) TranscriptID() string {
	return r.transcript.ID
}
