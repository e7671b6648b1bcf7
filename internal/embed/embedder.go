// Package embed adapts text-embedding capabilities for the retrieval engine.
//
// The embedding model is an optional capability: a lightweight deployment may
// run without one, in which case retrieval degrades to a no-op feature rather
// than an error. Callers detect this through Available() or the
// ErrUnavailable sentinel and must never surface it to the end user as a
// failure.
package embed

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/firebase/genkit/go/ai"
)

// ErrUnavailable indicates the embedding capability is not loaded in this
// deployment. Retrieval callers treat it as "no grounding available".
var ErrUnavailable = errors.New("embedding capability unavailable")

// Embedder maps a batch of texts to fixed-dimension unit-normalized vectors.
// All rows of one call share the same dimension, and the dimension is stable
// across calls for a given loaded model.
type Embedder interface {
	// Embed returns one L2-normalized vector per input text, in input order.
	// Returns ErrUnavailable when the capability is absent.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Available reports whether the capability is loaded.
	Available() bool
}

// Genkit wraps a Genkit ai.Embedder as an Embedder. Output rows are
// L2-normalized here because the index treats inner product as cosine
// similarity; model output is not trusted to be normalized.
type Genkit struct {
	embedder ai.Embedder
}

// NewGenkit creates an Embedder backed by the given Genkit embedder.
// A nil embedder yields the disabled adapter.
func NewGenkit(embedder ai.Embedder) Embedder {
	if embedder == nil {
		return Disabled()
	}
	return &Genkit{embedder: embedder}
}

// Available always reports true for a constructed Genkit adapter.
func (g *Genkit) Available() bool { return true }

// Embed embeds all texts in a single request, preserving input order.
func (g *Genkit) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	docs := make([]*ai.Document, len(texts))
	for i, t := range texts {
		docs[i] = ai.DocumentFromText(t, nil)
	}

	resp, err := g.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		v := make([]float32, len(e.Embedding))
		copy(v, e.Embedding)
		Normalize(v)
		vecs[i] = v
	}
	return vecs, nil
}

// Disabled returns the Embedder for capability-absent deployments.
func Disabled() Embedder { return disabled{} }

type disabled struct{}

func (disabled) Available() bool { return false }

func (disabled) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrUnavailable
}

// Normalize scales v to unit L2 length in place. A zero vector is left
// unchanged.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
