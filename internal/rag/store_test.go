package rag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *ChunkStore {
	t.Helper()
	return NewChunkStore(filepath.Join(t.TempDir(), "chunks.json"))
}

func TestChunkStore_LoadMissingFile(t *testing.T) {
	store := tempStore(t)

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected empty store, got %d chunks", len(chunks))
	}
}

func TestChunkStore_AppendAndLoad(t *testing.T) {
	store := tempStore(t)

	first := []Chunk{
		{ID: "a", Source: "doc.txt", Text: "first"},
		{ID: "b", Source: "doc.txt", Text: "second"},
	}
	if err := store.Append(first); err != nil {
		t.Fatalf("Append: %v", err)
	}

	second := []Chunk{{ID: "c", Source: "other.pdf", Text: "third"}}
	if err := store.Append(second); err != nil {
		t.Fatalf("Append: %v", err)
	}

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantIDs := []string{"a", "b", "c"}
	if len(chunks) != len(wantIDs) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantIDs))
	}
	for i, id := range wantIDs {
		if chunks[i].ID != id {
			t.Errorf("chunk %d id = %q, want %q (insertion order must be preserved)", i, chunks[i].ID, id)
		}
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

// Chunked non-ASCII text must survive the JSON round trip byte for byte, so
// the stored text stays a substring of the document and stays the text the
// matching vector embedded.
func TestChunkStore_NonASCIIRoundTrip(t *testing.T) {
	store := tempStore(t)

	text := strings.TrimSpace(strings.Repeat("héllo ", 10))
	pieces := ChunkText(text, 3, 0)

	batch := make([]Chunk, len(pieces))
	for i, p := range pieces {
		batch[i] = Chunk{ID: string(rune('a' + i)), Source: "notes.txt", Text: p}
	}
	if err := store.Append(batch); err != nil {
		t.Fatalf("Append: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != len(batch) {
		t.Fatalf("got %d chunks, want %d", len(loaded), len(batch))
	}
	for i := range batch {
		if loaded[i].Text != batch[i].Text {
			t.Errorf("chunk %d text = %q, want %q (round trip must be lossless)", i, loaded[i].Text, batch[i].Text)
		}
	}
}

func TestChunkStore_AppendEmptyIsNoop(t *testing.T) {
	store := tempStore(t)

	if err := store.Append(nil); err != nil {
		t.Fatalf("Append(nil): %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("empty append should not create the backing file")
	}
}

func TestChunkStore_Reset(t *testing.T) {
	store := tempStore(t)

	if err := store.Append([]Chunk{{ID: "a", Source: "s", Text: "t"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load after Reset: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected empty store after reset, got %d chunks", len(chunks))
	}

	// Reset of an already-empty store is fine.
	if err := store.Reset(); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
}

func TestChunkStore_FileIsHumanReadable(t *testing.T) {
	store := tempStore(t)

	if err := store.Append([]Chunk{{ID: "a1", Source: "readme.txt", Text: "hello"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading backing file: %v", err)
	}
	for _, want := range []string{`"id": "a1"`, `"source": "readme.txt"`, `"text": "hello"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("backing file missing %s:\n%s", want, data)
		}
	}
}

func TestChunkStore_CorruptFile(t *testing.T) {
	store := tempStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); err == nil {
		t.Error("expected error loading corrupt store")
	}
}
