package rag

import (
	"fmt"
	"strings"
)

// MaxSnippetChars caps how much of a chunk is quoted in the context block
// handed to the model. Longer chunks are truncated with an ellipsis.
const MaxSnippetChars = 2500

// BuildContext renders retrieved results as the document-context block for
// the generation capability. available reports whether the retrieval
// capability is loaded; it selects between the two empty-state sentinels.
func BuildContext(results []Result, available bool) string {
	if !available {
		return "DOCUMENT CONTEXT: (document grounding is disabled in this deployment)"
	}
	if len(results) == 0 {
		return "DOCUMENT CONTEXT: (no documents uploaded yet)"
	}

	blocks := make([]string, 0, len(results)+1)
	blocks = append(blocks, "DOCUMENT CONTEXT (top matches):")
	for _, r := range results {
		snippet := strings.TrimSpace(r.Text)
		if runes := []rune(snippet); len(runes) > MaxSnippetChars {
			snippet = string(runes[:MaxSnippetChars]) + "..."
		}
		blocks = append(blocks, fmt.Sprintf("[%d] Source: %s | Score: %.3f\n%s",
			r.Rank, r.Source, r.Score, snippet))
	}
	return strings.Join(blocks, "\n\n")
}
