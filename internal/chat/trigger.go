package chat

import (
	"strings"

	"github.com/docchat/docchat/internal/rag"
)

// weakScoreThreshold marks document retrieval as too weak to answer on its
// own; below it the web-search fallback kicks in.
const weakScoreThreshold = 0.25

// timeKeywords indicate the question needs current information that an
// uploaded document cannot carry.
var timeKeywords = []string{
	"current", "latest", "recent", "today", "now", "this year",
	"2024", "2025", "2026", "news", "happening", "update",
}

// questionStarters are factual question patterns that usually want a live
// lookup rather than document grounding.
var questionStarters = []string{
	"what is", "who is", "when did", "where is", "how to",
	"what are", "who are", "when was", "where are",
}

// shouldSearch decides whether a message triggers the web-search fallback,
// given the retrieval results for the same message.
func shouldSearch(message string, retrieved []rag.Result) bool {
	lower := strings.ToLower(message)

	// Document retrieval came back empty or too weak.
	if len(retrieved) == 0 || retrieved[0].Score < weakScoreThreshold {
		return true
	}

	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	for _, prefix := range questionStarters {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	// Short factual question.
	if len(strings.Fields(message)) <= 10 && strings.Contains(message, "?") {
		return true
	}

	return false
}
