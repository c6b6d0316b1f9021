package storage

import (
	"strings"
	"time"

	"concierge/model"
)

// TranscriptMatch is one message hit from a transcript search.
type TranscriptMatch struct {
	TranscriptID   string
	TranscriptName string
	MessageIndex   int
	Role           string
	Preview        string
	Timestamp      time.Time
}

// SearchTranscripts scans every saved transcript for messages containing
// query (case-insensitive). System notices are skipped.
func (s *TranscriptStore) SearchTranscripts(query string) ([]TranscriptMatch, error) {
	if query == "" {
		return []TranscriptMatch{}, nil
	}

	list, err := s.List()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []TranscriptMatch
	for _, meta := range list {
		transcript, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for i, msg := range transcript.Messages {
			if msg.Role == model.RoleSystem {
				continue
			}
			if !strings.Contains(strings.ToLower(msg.Text), queryLower) {
				continue
			}
			preview := msg.Text
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			matches = append(matches, TranscriptMatch{
				TranscriptID:   transcript.ID,
				TranscriptName: transcript.Name,
				MessageIndex:   i,
				Role:           msg.Role,
				Preview:        preview,
				Timestamp:      msg.Timestamp,
			})
		}
	}
	return matches, nil
}
