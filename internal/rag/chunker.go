package rag

import "strings"

// ChunkText splits text into fixed-size overlapping windows.
//
// Windows are taken left to right over the trimmed text, measured in runes
// so a boundary never splits a multi-byte character: each window covers
// size runes and the offset advances by size-overlap. The advance is
// clamped to at least 1 so that overlap >= size still terminates. No
// sentence or word boundary awareness; the same text and parameters always
// produce the same sequence.
//
// Empty or whitespace-only input yields nil, not an error.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for offset := 0; offset < len(runes); offset += step {
		end := offset + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[offset:end]))
	}
	return chunks
}
