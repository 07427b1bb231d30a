// Package retrieval embeds questions and finds the most relevant
// ingested documents by cosine similarity. When similarity search cannot
// help (embedding failure, no match above the threshold) it degrades to
// the most recently ingested documents instead of failing the question.
package retrieval

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/firebase/genkit/go/ai"

	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/log"
)

// Searcher is the document store surface the engine needs.
type Searcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, k int, threshold float64) ([]document.Match, error)
	ListRecent(ctx context.Context, k int) ([]document.Document, error)
}

// Config bounds retrieval. Values come from the application config.
type Config struct {
	TopK            int
	Threshold       float64
	EmbedInputChars int
	PerDocChars     int
}

// Engine performs semantic retrieval over the document store.
type Engine struct {
	embedder ai.Embedder
	store    Searcher
	cfg      Config
	logger   log.Logger
}

// New creates an Engine.
func New(embedder ai.Embedder, store Searcher, cfg Config, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{embedder: embedder, store: store, cfg: cfg, logger: logger}
}

// Option overrides a retrieval parameter for one call.
type Option func(*Config)

// WithTopK overrides how many documents are returned.
func WithTopK(k int) Option {
	return func(c *Config) { c.TopK = k }
}

// WithThreshold overrides the minimum similarity.
func WithThreshold(t float64) Option {
	return func(c *Config) { c.Threshold = t }
}

// Retrieve returns the documents most relevant to the question, most
// similar first. Content is truncated to the per-document budget so the
// caller can assemble a bounded prompt context.
//
// Degraded modes, in order: an embedding failure or an empty search
// result falls back to the most recent documents with similarity 0. Only
// a store failure is returned as an error.
func (e *Engine) Retrieve(ctx context.Context, question string, opts ...Option) ([]document.Match, error) {
	cfg := e.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	embedding, err := e.Embed(ctx, question)
	if err != nil {
		e.logger.Warn("question embedding failed, using recency fallback", "error", err)
		return e.recent(ctx, cfg)
	}

	matches, err := e.store.SearchSimilar(ctx, embedding, cfg.TopK, cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(matches) == 0 {
		e.logger.Debug("no documents above similarity threshold, using recency fallback",
			"threshold", cfg.Threshold)
		return e.recent(ctx, cfg)
	}

	for i := range matches {
		matches[i].Content = truncate(matches[i].Content, cfg.PerDocChars)
	}
	return matches, nil
}

// Embed generates the embedding for a text, truncated to the embedding
// input budget.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncate(text, e.cfg.EmbedInputChars)

	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(text)}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedder returned no embedding")
	}
	return resp.Embeddings[0].Embedding, nil
}

// recent is the degraded retrieval path: newest documents, similarity 0.
func (e *Engine) recent(ctx context.Context, cfg Config) ([]document.Match, error) {
	docs, err := e.store.ListRecent(ctx, cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("recency fallback: %w", err)
	}

	matches := make([]document.Match, 0, len(docs))
	for _, d := range docs {
		d.Content = truncate(d.Content, cfg.PerDocChars)
		matches = append(matches, document.Match{Document: d, Similarity: 0})
	}
	return matches, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
// n <= 0 means no limit.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
