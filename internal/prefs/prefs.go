package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ai-menu-assistant/internal/shared"
)

// maxAdjustments bounds the stored override history; oldest entries are
// dropped first.
const maxAdjustments = 100

const defaultRelPath = ".config/ai-menu-assistant/preferences.json"

// Snapshot is the full preference record. It is always loaded whole, mutated
// in memory and rewritten whole; there are no partial updates.
type Snapshot struct {
	Adjustments     []shared.Adjustment `json:"adjustments"`
	LastDaySelected *shared.Date        `json:"last_day_selected,omitempty"`
	Token           string              `json:"token,omitempty"`
}

// AppendAdjustments adds override records, keeping at most the newest
// maxAdjustments entries in original order.
func (s *Snapshot) AppendAdjustments(adjustments []shared.Adjustment) {
	s.Adjustments = append(s.Adjustments, adjustments...)
	if excess := len(s.Adjustments) - maxAdjustments; excess > 0 {
		s.Adjustments = s.Adjustments[excess:]
	}
}

// Store is a file-backed preference store.
type Store struct {
	path string
}

// NewStore creates a Store at the given path. An empty path selects the
// default location under the user's home directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, defaultRelPath)
	}
	return &Store{path: path}, nil
}

// Load reads the preference file. A missing file yields an empty snapshot
// rather than an error.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}
	return &snapshot, nil
}

// Save rewrites the preference file with the given snapshot, creating parent
// directories on first write.
func (s *Store) Save(snapshot *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	return nil
}

// SetToken stores the refresh token.
func (s *Store) SetToken(token string) error {
	return s.update(func(snapshot *Snapshot) {
		snapshot.Token = token
	})
}

// SetLastDaySelected advances the stored day cursor.
func (s *Store) SetLastDaySelected(date shared.Date) error {
	return s.update(func(snapshot *Snapshot) {
		snapshot.LastDaySelected = &date
	})
}

// Append persists override records, enforcing the history cap.
func (s *Store) Append(adjustments []shared.Adjustment) error {
	return s.update(func(snapshot *Snapshot) {
		snapshot.AppendAdjustments(adjustments)
	})
}

func (s *Store) update(mutate func(*Snapshot)) error {
	snapshot, err := s.Load()
	if err != nil {
		return err
	}
	mutate(snapshot)
	return s.Save(snapshot)
}
