package rag

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrDimensionMismatch indicates vectors of the wrong width were added.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Index is a flat exact nearest-neighbor index over unit-normalized vectors.
// Similarity is the inner product, which equals cosine similarity for
// normalized rows. Vectors are addressed by position in insertion order;
// positional alignment with the ChunkStore is the Engine's responsibility.
//
// The index lives fully in memory and is persisted as a single gob-encoded
// binary file. A flat scan is exact and fast enough for the corpus sizes a
// single-process assistant handles; swapping in an ANN structure would only
// change this type.
type Index struct {
	path string

	// Gob-visible state. Dim is fixed at creation (or by the stored file)
	// and every row in Vectors has length Dim.
	Dim     int
	Vectors [][]float32
}

// Hit is one nearest-neighbor candidate: the vector's position in insertion
// order and its inner-product similarity to the query.
type Hit struct {
	Position int
	Score    float32
}

// LoadIndex deserializes the index file at path, or creates a fresh empty
// index at dimension dim if no file exists. For an existing file the stored
// dimension wins; dim only configures the create path.
func LoadIndex(path string, dim int) (*Index, error) {
	data, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Index{path: path, Dim: dim}, nil
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer func() { _ = data.Close() }()

	idx := &Index{path: path}
	if err := gob.NewDecoder(data).Decode(idx); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", path, err)
	}
	return idx, nil
}

// Count returns the number of stored vectors.
func (idx *Index) Count() int { return len(idx.Vectors) }

// Add appends vectors in call order. The resulting positions are
// [previousCount, previousCount+len(vecs)).
func (idx *Index) Add(vecs [][]float32) error {
	for _, v := range vecs {
		if len(v) != idx.Dim {
			return fmt.Errorf("%w: index dim %d, vector dim %d", ErrDimensionMismatch, idx.Dim, len(v))
		}
	}
	idx.Vectors = append(idx.Vectors, vecs...)
	return nil
}

// Search returns up to k candidates ordered best-first. Searching an empty
// index returns no candidates, not an error.
func (idx *Index) Search(query []float32, k int) []Hit {
	if len(idx.Vectors) == 0 || k <= 0 || len(query) != idx.Dim {
		return nil
	}

	hits := make([]Hit, len(idx.Vectors))
	for i, v := range idx.Vectors {
		hits[i] = Hit{Position: i, Score: dot(query, v)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// Persist writes the full index to its backing file, replacing any prior
// version via temp file + rename.
func (idx *Index) Persist() error {
	if err := os.MkdirAll(filepath.Dir(idx.path), 0o750); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(idx.path), ".index-*.gob")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(idx); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp index file: %w", err)
	}

	if err := os.Rename(tmpName, idx.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

// RemoveIndexFile deletes the index file at path. Removing an absent file
// is a no-op.
func RemoveIndexFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing index file: %w", err)
	}
	return nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
