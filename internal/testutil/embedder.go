// Package testutil provides shared helpers for docchat tests.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/docchat/docchat/internal/embed"
)

// StubEmbedder is a deterministic, offline embedding capability for tests.
//
// Each text becomes a unit-normalized bag-of-words vector: every lowercased
// word is hashed into one of Dim buckets. Texts sharing vocabulary therefore
// score high under inner product, which is enough semantic structure for
// retrieval tests without a real model.
type StubEmbedder struct {
	// Dim is the vector width. Defaults to 32 when zero.
	Dim int

	// Err, when set, is returned by every Embed call.
	Err error

	// Calls counts Embed invocations, for asserting no-op paths.
	Calls int
}

var _ embed.Embedder = (*StubEmbedder)(nil)

// Available always reports true; use embed.Disabled() for the
// capability-absent scenario.
func (s *StubEmbedder) Available() bool { return true }

// Embed returns one normalized vector per text, in order.
func (s *StubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}

	dim := s.Dim
	if dim <= 0 {
		dim = 32
	}

	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, dim)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(word))
			v[h.Sum32()%uint32(dim)]++
		}
		embed.Normalize(v)
		vecs[i] = v
	}
	return vecs, nil
}
