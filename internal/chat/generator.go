package chat

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Generator produces the assistant reply for a prepared conversation.
type Generator interface {
	Generate(ctx context.Context, system string, messages []*ai.Message) (string, error)
}

// GenkitGenerator generates replies through a Genkit model.
type GenkitGenerator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
	maxTokens   int
}

// NewGenkitGenerator creates a Generator for the provider-qualified model
// name (e.g. "googleai/gemini-2.5-flash").
func NewGenkitGenerator(g *genkit.Genkit, modelName string, temperature float32, maxTokens int) *GenkitGenerator {
	return &GenkitGenerator{
		g:           g,
		modelName:   modelName,
		temperature: float64(temperature),
		maxTokens:   maxTokens,
	}
}

// Generate runs one model call and returns the reply text.
func (gg *GenkitGenerator) Generate(ctx context.Context, system string, messages []*ai.Message) (string, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.modelName),
		ai.WithSystem(system),
		ai.WithMessages(messages...),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     gg.temperature,
			MaxOutputTokens: gg.maxTokens,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}
	return resp.Text(), nil
}
