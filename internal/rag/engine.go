package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/log"
)

// File names under the engine's data directory.
const (
	chunksFileName = "chunks.json"
	indexFileName  = "index.gob"
	lockFileName   = ".ingest.lock"
)

// Defaults for search behavior. Callers override per call via SearchOption;
// these are not ambient globals.
const (
	// DefaultTopK is the number of nearest-neighbor candidates fetched
	// before threshold filtering.
	DefaultTopK = 8

	// DefaultThreshold is the minimum similarity for a candidate to be
	// considered relevant. Matches below it are discarded.
	DefaultThreshold = 0.20
)

// Params configures the chunking policy of an Engine.
type Params struct {
	ChunkSize    int
	ChunkOverlap int
}

// Result is one retrieved chunk joined with its similarity score and its
// 1-based rank among the surviving results.
type Result struct {
	Chunk
	Score float32 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchOption configures a single Search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK      int
	threshold float32
}

// WithTopK sets the number of candidates fetched from the index before
// threshold filtering. Default: DefaultTopK.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithThreshold sets the minimum similarity score for a result to survive.
// Default: DefaultThreshold.
func WithThreshold(t float32) SearchOption {
	return func(c *searchConfig) {
		c.threshold = t
	}
}

// Engine orchestrates the retrieval pipeline: chunking, embedding, index
// maintenance on the ingest path; query embedding, nearest-neighbor search,
// threshold filtering and chunk lookup on the query path.
//
// Two parallel artifacts live under the data directory: chunks.json (the
// ordered chunk list, source of truth for content) and index.gob (the vector
// index). The i-th vector must always correspond to the i-th chunk. Ingest
// and reset hold an in-process mutex plus a file lock for the whole
// load-mutate-persist sequence to preserve that invariant; queries only read
// and may run concurrently, accepting momentary staleness against an
// in-flight ingest.
//
// There is no transaction across the two files. The index is persisted before
// the store, so an I/O failure between the two persists leaves the index ahead
// of the store: dangling index positions are skipped at query time, further
// ingests refuse to append onto the mismatch, and a reset is the recovery
// path.
type Engine struct {
	dataDir  string
	store    *ChunkStore
	indexPth string
	embedder embed.Embedder
	params   Params
	logger   log.Logger

	mu    sync.Mutex
	flock *flock.Flock
}

// NewEngine creates an Engine storing its artifacts under dataDir.
// The directory and files are created lazily on first ingest.
func NewEngine(dataDir string, embedder embed.Embedder, params Params, logger log.Logger) *Engine {
	return &Engine{
		dataDir:  dataDir,
		store:    NewChunkStore(filepath.Join(dataDir, chunksFileName)),
		indexPth: filepath.Join(dataDir, indexFileName),
		embedder: embedder,
		params:   params,
		logger:   logger,
		flock:    flock.New(filepath.Join(dataDir, lockFileName)),
	}
}

// Available reports whether the embedding capability is loaded. When false,
// Ingest is a no-op and Search always returns no results.
func (e *Engine) Available() bool {
	return e.embedder.Available()
}

// Ingest chunks full text, embeds the chunks and appends them to both the
// vector index and the chunk store, then persists both. Returns the number
// of chunks added.
//
// Empty text and an unavailable embedding capability both return 0 with no
// mutation; neither is an error. Re-ingesting the same document is not
// deduplicated: each call appends new chunks under fresh ids.
func (e *Engine) Ingest(ctx context.Context, source, text string) (int, error) {
	chunks := ChunkText(text, e.params.ChunkSize, e.params.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}
	if !e.embedder.Available() {
		e.logger.Warn("ingest skipped, embedding capability unavailable", "source", source)
		return 0, nil
	}

	// One ordered batch drives the embedding, the index append and the
	// store append. Position alignment depends on never reordering it.
	batch := make([]Chunk, len(chunks))
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		batch[i] = Chunk{ID: uuid.NewString(), Source: source, Text: c}
		texts[i] = c
	}

	vecs, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks for %q: %w", source, err)
	}
	if len(vecs) == 0 {
		return 0, nil
	}
	dim := len(vecs[0])

	if err := e.lock(); err != nil {
		return 0, err
	}
	defer e.unlock()

	index, err := LoadIndex(e.indexPth, dim)
	if err != nil {
		return 0, err
	}

	// A count mismatch means an earlier ingest failed between the two
	// persists. Appending on top would misalign every new vector, so refuse
	// until the stores are reset.
	stored, err := e.store.Count()
	if err != nil {
		return 0, err
	}
	if index.Count() != stored {
		return 0, fmt.Errorf("chunk store and vector index disagree (%d chunks, %d vectors): reset required", stored, index.Count())
	}

	if err := index.Add(vecs); err != nil {
		return 0, err
	}

	// Persist the index first. A failure between the two writes then leaves
	// the index ahead of the store, which the query path tolerates by
	// skipping dangling positions. The reverse order would strand chunks
	// without vectors and misalign every later ingest.
	if err := index.Persist(); err != nil {
		return 0, err
	}
	if err := e.store.Append(batch); err != nil {
		return 0, fmt.Errorf("appending chunks after index persist (index may run ahead): %w", err)
	}

	e.logger.Info("document ingested",
		"source", source,
		"chunks", len(batch),
		"index_count", index.Count(),
	)
	return len(batch), nil
}

// Search embeds the query, runs nearest-neighbor search and returns results
// above the similarity threshold, ranked densely from 1 best-first.
//
// An unavailable embedding capability, an empty chunk store or an empty
// index all yield an empty result list with a nil error.
func (e *Engine) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := &searchConfig{topK: DefaultTopK, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(cfg)
	}

	if !e.embedder.Available() {
		return nil, nil
	}

	chunks, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	qvecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(qvecs) == 0 {
		return nil, nil
	}

	index, err := LoadIndex(e.indexPth, len(qvecs[0]))
	if err != nil {
		return nil, err
	}
	if index.Count() == 0 {
		return nil, nil
	}

	var results []Result
	for _, hit := range index.Search(qvecs[0], cfg.topK) {
		// Positions beyond the store indicate an earlier partial write;
		// skip rather than fail the whole query.
		if hit.Position < 0 || hit.Position >= len(chunks) {
			e.logger.Warn("index position without chunk store entry, skipping",
				"position", hit.Position, "chunks", len(chunks))
			continue
		}
		if hit.Score < cfg.threshold {
			continue
		}
		results = append(results, Result{
			Chunk: chunks[hit.Position],
			Score: hit.Score,
			Rank:  len(results) + 1,
		})
	}

	e.logger.Debug("retrieval search",
		"k", cfg.topK,
		"threshold", cfg.threshold,
		"matches", len(results),
	)
	return results, nil
}

// Reset wipes all ingested knowledge: the chunk store is truncated to empty
// and the index file is removed. The next ingest recreates an empty index at
// the then-current embedding dimension. Reset is idempotent.
func (e *Engine) Reset() error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.unlock()

	if err := e.store.Reset(); err != nil {
		return err
	}
	if err := RemoveIndexFile(e.indexPth); err != nil {
		return err
	}

	e.logger.Info("retrieval stores reset")
	return nil
}

// lock acquires the mutual-exclusion boundary around the combined
// load + mutate + persist sequence: an in-process mutex for goroutines and
// a file lock against other processes on the same data directory.
func (e *Engine) lock() error {
	e.mu.Lock()
	if err := os.MkdirAll(e.dataDir, 0o750); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := e.flock.Lock(); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("acquiring ingest lock: %w", err)
	}
	return nil
}

func (e *Engine) unlock() {
	if err := e.flock.Unlock(); err != nil {
		e.logger.Warn("releasing ingest lock", "error", err)
	}
	e.mu.Unlock()
}
