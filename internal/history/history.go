// Package history persists the conversation transcript as a JSON file.
//
// The transcript is an append-only list of turns, one file per deployment.
// Writes go through a temp file and rename so a crash never leaves a
// half-written transcript, and a mutex serializes concurrent appenders.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Turn is one user/assistant exchange.
type Turn struct {
	Time time.Time `json:"time"`
	User string    `json:"user"`
	Bot  string    `json:"bot"`
}

// Store reads and writes the transcript file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given file path. The file is
// created on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns all recorded turns in chronological order. A missing file is
// an empty transcript, not an error.
func (s *Store) Load() ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Recent returns up to n of the most recent turns in chronological order.
func (s *Store) Recent(n int) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.load()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns, nil
}

// Append records one turn at the end of the transcript.
func (s *Store) Append(turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.load()
	if err != nil {
		return err
	}
	return s.write(append(turns, turn))
}

// Clear truncates the transcript to an empty list.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write([]Turn{})
}

func (s *Store) load() ([]Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", s.path, err)
	}
	return turns, nil
}

func (s *Store) write(turns []Turn) error {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing history file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}
