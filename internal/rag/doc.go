// Package rag implements retrieval-augmented generation over user-uploaded
// documents.
//
// Document text is split into overlapping fixed-size chunks, embedded into
// unit-normalized vectors, and indexed for nearest-neighbor search. At query
// time the top matches above a similarity threshold are joined back to their
// chunks and formatted into a context block for the generation capability.
//
// # Architecture
//
//	ingest:  text → ChunkText → []Chunk → Embedder → vectors
//	                  └─ append → ChunkStore (chunks.json)
//	                  └─ add    → Index      (index.gob)
//
//	query:   text → Embedder → Index.Search(k) → (position, score)
//	                  → threshold filter → ChunkStore join → []Result
//	                  → BuildContext
//
// # Positional invariant
//
// The index addresses vectors by position, not by chunk id: after every
// successful ingest or reset, the chunk store and the index have the same
// length and the i-th vector is the embedding of the i-th chunk. The Engine
// guards the combined load-mutate-persist sequence with a mutex and a file
// lock; there is no transaction across the two files, so a mid-persist I/O
// failure can leave them inconsistent. Drift is tolerated at query time
// (positions without a chunk are skipped), refused at ingest time, and
// repaired by Reset.
//
// # Degradation
//
// The embedding model is optional. Without it, Ingest reports zero chunks
// added and Search returns no results; nothing errors. The rest of the
// assistant keeps working without document grounding.
package rag
