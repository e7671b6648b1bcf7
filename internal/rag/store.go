package rag

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Chunk is the atomic unit of retrieval: a bounded substring of an ingested
// document together with its origin. Chunks are immutable once created and
// are only removed by a full reset.
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// ChunkStore persists the ordered chunk list as a single JSON file.
//
// Insertion order is significant: the vector index addresses vectors by
// position, and the i-th stored vector must correspond to the i-th chunk.
// The store is the single source of truth for chunk content; the index
// holds only vectors.
//
// Writes go through a temp file followed by an atomic rename, so a crashed
// append leaves the previous file intact. Callers serialize writers; see
// Engine for the locking boundary.
type ChunkStore struct {
	path string
}

// NewChunkStore creates a store backed by the JSON file at path.
// The file is created lazily on the first Append or Reset.
func NewChunkStore(path string) *ChunkStore {
	return &ChunkStore{path: path}
}

// Path returns the backing file path.
func (s *ChunkStore) Path() string { return s.path }

// Load reads the full ordered chunk list. A missing file is an empty store,
// not an error.
func (s *ChunkStore) Load() ([]Chunk, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chunk store: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parsing chunk store %s: %w", s.path, err)
	}
	return chunks, nil
}

// Count returns the number of stored chunks.
func (s *ChunkStore) Count() (int, error) {
	chunks, err := s.Load()
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Append reads the existing list, concatenates the new chunks in the order
// given, and writes the full list back. Durability is all-or-nothing per
// call, not per chunk.
func (s *ChunkStore) Append(chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	existing, err := s.Load()
	if err != nil {
		return err
	}

	return s.write(append(existing, chunks...))
}

// Reset truncates the store to an empty list. After Reset, Load returns
// an empty slice regardless of prior content.
func (s *ChunkStore) Reset() error {
	return s.write([]Chunk{})
}

// write serializes the full list and atomically replaces the backing file.
func (s *ChunkStore) write(chunks []Chunk) error {
	// Indented JSON keeps the file human-diffable.
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding chunk store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating chunk store directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".chunks-*.json")
	if err != nil {
		return fmt.Errorf("creating temp chunk file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing chunk store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp chunk file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing chunk store: %w", err)
	}
	return nil
}
