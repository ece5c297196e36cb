// Package metrics persists oracle usage telemetry to SQLite.
package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-menu-assistant/internal/shared"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS oracle_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	timestamp DATETIME NOT NULL
);
`

// ExecutionMetric records metadata for a single oracle call.
type ExecutionMetric struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (and initializes) the metrics database at the given path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metrics schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record saves a metric to the database.
func (s *Store) Record(m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO oracle_metrics (provider, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Provider, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// RecordUsage records metrics directly from token usage. Calls with no
// token counts are skipped.
func (s *Store) RecordUsage(provider string, usage shared.TokenUsage, latency time.Duration) error {
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(ExecutionMetric{
		Provider:         provider,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
	})
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	Calls           int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.Query(
		`SELECT date(timestamp), SUM(prompt_tokens), SUM(completion_tokens), COUNT(*)
		 FROM oracle_metrics WHERE timestamp >= ?
		 GROUP BY date(timestamp) ORDER BY date(timestamp) DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.Calls); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	result, err := s.db.Exec(`DELETE FROM oracle_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
