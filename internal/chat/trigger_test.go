package chat

import (
	"testing"

	"github.com/docchat/docchat/internal/rag"
)

func strongResults(score float32) []rag.Result {
	return []rag.Result{{Score: score, Rank: 1}}
}

func TestShouldSearch(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		retrieved []rag.Result
		want      bool
	}{
		{
			name:      "no retrieval results",
			message:   "tell me about the quarterly report",
			retrieved: nil,
			want:      true,
		},
		{
			name:      "weak best score",
			message:   "tell me about the quarterly report",
			retrieved: strongResults(0.21),
			want:      true,
		},
		{
			name:      "strong results, plain statement",
			message:   "summarize the section about employee onboarding procedures in detail",
			retrieved: strongResults(0.8),
			want:      false,
		},
		{
			name:      "time-sensitive keyword",
			message:   "summarize the latest developments mentioned in the report please and thanks",
			retrieved: strongResults(0.8),
			want:      true,
		},
		{
			name:      "factual question starter",
			message:   "what is the capital city of the country discussed in chapter two of the uploaded document",
			retrieved: strongResults(0.8),
			want:      true,
		},
		{
			name:      "short question",
			message:   "population of Norway?",
			retrieved: strongResults(0.8),
			want:      true,
		},
		{
			name:      "long question without starter pattern",
			message:   "could you please explain in more depth the argument the author makes about supply chains in the third section?",
			retrieved: strongResults(0.8),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSearch(tt.message, tt.retrieved); got != tt.want {
				t.Errorf("shouldSearch(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}
