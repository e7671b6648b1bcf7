// Package chat orchestrates one conversation turn: document retrieval, the
// web-search fallback, history assembly, and reply generation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"

	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/rag"
	"github.com/docchat/docchat/internal/websearch"
)

// ErrEmptyMessage indicates the user message was blank.
var ErrEmptyMessage = errors.New("empty message")

// systemPrompt is the assistant persona. Retrieval and web-search context
// blocks are appended to it per turn.
const systemPrompt = `You are a helpful, knowledgeable assistant. Answer questions on any topic confidently.

Core principles:
1. Be direct and natural. No "As an AI" phrases, answer like a knowledgeable human.
2. Use context wisely: prefer the document context from uploaded files when it is relevant, and the web search results for current or factual information.
3. Respond in the language the user writes in.
4. Be accurate. Do not make up facts; if unsure, say so.`

// Retriever is the document retrieval capability the assistant consumes.
type Retriever interface {
	Search(ctx context.Context, query string, opts ...rag.SearchOption) ([]rag.Result, error)
	Available() bool
}

// WebSearcher is the live web-search capability. A nil searcher disables
// the fallback.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// Source attributes part of a reply to a retrieved document.
type Source struct {
	Source string  `json:"source"`
	Score  float32 `json:"score"`
	Type   string  `json:"type"`
}

// Response is the outcome of one conversation turn.
type Response struct {
	Reply   string   `json:"reply"`
	Sources []Source `json:"sources"`
}

// Assistant answers user messages with document grounding and an optional
// web-search fallback.
type Assistant struct {
	retriever    Retriever
	web          WebSearcher
	generator    Generator
	history      *history.Store
	historyTurns int
	logger       log.Logger
}

// NewAssistant wires the conversation pipeline. web may be nil to disable
// the web-search fallback; historyTurns caps how many past turns are
// replayed to the model.
func NewAssistant(retriever Retriever, web WebSearcher, generator Generator, hist *history.Store, historyTurns int, logger log.Logger) *Assistant {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Assistant{
		retriever:    retriever,
		web:          web,
		generator:    generator,
		history:      hist,
		historyTurns: historyTurns,
		logger:       logger,
	}
}

// Reply answers one user message and records the exchange in the
// transcript. Retrieval and web-search failures degrade to answering
// without that context; only generation failures surface as errors.
func (a *Assistant) Reply(ctx context.Context, message string) (*Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	retrieved, err := a.retriever.Search(ctx, message)
	if err != nil {
		a.logger.Warn("document retrieval failed, answering without grounding", "error", err)
		retrieved = nil
	}
	docContext := rag.BuildContext(retrieved, a.retriever.Available())

	searchContext := ""
	if a.web != nil && shouldSearch(message, retrieved) {
		results, err := a.web.Search(ctx, message)
		if err != nil {
			a.logger.Warn("web search failed, answering without live results", "error", err)
		} else {
			searchContext = websearch.Format(results)
		}
	}

	system := systemPrompt + "\n\n" + docContext
	if searchContext != "" {
		system += "\n\n" + searchContext
	}

	messages, err := a.buildMessages(message)
	if err != nil {
		return nil, err
	}

	reply, err := a.generator.Generate(ctx, system, messages)
	if err != nil {
		return nil, fmt.Errorf("answering message: %w", err)
	}

	turn := history.Turn{Time: time.Now(), User: message, Bot: reply}
	if err := a.history.Append(turn); err != nil {
		a.logger.Warn("recording conversation turn failed", "error", err)
	}

	sources := make([]Source, 0, len(retrieved))
	for _, r := range retrieved {
		sources = append(sources, Source{Source: r.Source, Score: r.Score, Type: "document"})
	}

	a.logger.Info("conversation turn completed",
		"documents", len(retrieved),
		"web_search", searchContext != "")
	return &Response{Reply: reply, Sources: sources}, nil
}

// buildMessages replays the most recent transcript turns and appends the
// new user message.
func (a *Assistant) buildMessages(message string) ([]*ai.Message, error) {
	recent, err := a.history.Recent(a.historyTurns)
	if err != nil {
		return nil, fmt.Errorf("loading conversation history: %w", err)
	}

	messages := make([]*ai.Message, 0, 2*len(recent)+1)
	for _, turn := range recent {
		messages = append(messages,
			ai.NewUserMessage(ai.NewTextPart(turn.User)),
			ai.NewModelMessage(ai.NewTextPart(turn.Bot)),
		)
	}
	return append(messages, ai.NewUserMessage(ai.NewTextPart(message))), nil
}
