package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// InsightStore is the sqlite-backed log behind the contact-workflow and
// project-insight tools. It implements tools.InsightSink.
type InsightStore struct {
	db *sql.DB
}

// Insight is one logged project observation.
type Insight struct {
	ID        string
	Insight   string
	Tags      []string
	CreatedAt time.Time
}

// ContactRequest is one recorded follow-up request.
type ContactRequest struct {
	ID        string
	Reference string
	Name      string
	Email     string
	Topic     string
	CreatedAt time.Time
}

// NewInsightStore opens (or creates) the database under dataDir.
func NewInsightStore(dataDir string) (*InsightStore, error) {
	dbPath := filepath.Join(dataDir, "insights.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &InsightStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *InsightStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS insights (
		id TEXT PRIMARY KEY,
		insight TEXT NOT NULL,
		tags TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS contact_requests (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		topic TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_contact_requests_reference ON contact_requests(reference);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LogInsight implements tools.InsightSink.
func (s *InsightStore) LogInsight(insight string, tags []string) error {
	_, err := s.db.Exec(
		`INSERT INTO insights (id, insight, tags, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), insight, strings.Join(tags, ","), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert insight: %w", err)
	}
	return nil
}

// RecordContact implements tools.InsightSink. It returns the reference the
// model quotes back to the user.
func (s *InsightStore) RecordContact(name, email, topic string) (string, error) {
	id := uuid.New().String()
	reference := "CW-" + strings.ToUpper(id[:8])

	_, err := s.db.Exec(
		`INSERT INTO contact_requests (id, reference, name, email, topic, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, reference, name, email, topic, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert contact request: %w", err)
	}
	return reference, nil
}

// ListInsights returns all logged insights, newest first.
func (s *InsightStore) ListInsights() ([]Insight, error) {
	rows, err := s.db.Query(
		`SELECT id, insight, tags, created_at FROM insights ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []Insight
	for rows.Next() {
		var entry Insight
		var tags string
		if err := rows.Scan(&entry.ID, &entry.Insight, &tags, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		if tags != "" {
			entry.Tags = strings.Split(tags, ",")
		}
		insights = append(insights, entry)
	}
	return insights, rows.Err()
}

// ListContacts returns all recorded contact requests, newest first.
func (s *InsightStore) ListContacts() ([]ContactRequest, error) {
	rows, err := s.db.Query(
		`SELECT id, reference, name, email, topic, created_at FROM contact_requests ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact requests: %w", err)
	}
	defer rows.Close()

	var contacts []ContactRequest
	for rows.Next() {
		var entry ContactRequest
		if err := rows.Scan(&entry.ID, &entry.Reference, &entry.Name, &entry.Email, &entry.Topic, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact request: %w", err)
		}
		contacts = append(contacts, entry)
	}
	return contacts, rows.Err()
}

// Close releases the database handle.
func (s *InsightStore) Close() error {
	return s.db.Close()
}
