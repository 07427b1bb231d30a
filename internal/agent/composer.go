// Package agent composes answers to portal questions. Structured
// questions are answered deterministically from the order book; every
// other question goes through semantic retrieval and exactly one model
// call.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/intent"
	"github.com/tecnoperfil/portal-agent/internal/log"
	"github.com/tecnoperfil/portal-agent/internal/retrieval"
)

var (
	// ErrEmptyQuestion indicates the request carried no question text.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrCompletion indicates the model call failed.
	ErrCompletion = errors.New("completion failed")
)

// structuredSource labels answers produced without retrieval.
const structuredSource = "consulta estruturada: carteira de encomendas"

// Answer is a composed response with its provenance.
type Answer struct {
	Answer    string
	Sources   []string
	QueryType intent.Type
}

// Dispatcher answers structured queries. A false second return means the
// question must go through the semantic path.
type Dispatcher interface {
	Execute(ctx context.Context, q intent.Query) (string, bool)
}

// Retriever finds the documents most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, opts ...retrieval.Option) ([]document.Match, error)
}

// Recorder persists exchanges for audit. Append failures are logged and
// swallowed; recording never fails an answer.
type Recorder interface {
	Append(ctx context.Context, question, answer string, sources []string) (uuid.UUID, error)
}

// Config bounds prompt assembly. Values come from the application config.
type Config struct {
	ModelName        string
	Temperature      float32
	MaxTokens        int
	MaxContextChars  int
	MaxQuestionChars int
	MaxPromptChars   int
}

// Composer orchestrates the two answer paths.
type Composer struct {
	dispatcher Dispatcher
	retriever  Retriever
	generator  Generator
	recorder   Recorder
	cfg        Config
	logger     log.Logger
}

// New creates a Composer. recorder may be nil to disable exchange audit.
func New(dispatcher Dispatcher, retriever Retriever, generator Generator, recorder Recorder, cfg Config, logger log.Logger) *Composer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Composer{
		dispatcher: dispatcher,
		retriever:  retriever,
		generator:  generator,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
	}
}

// Compose answers a question as the given persona.
//
// The structured path answers without any model call. The semantic path
// retrieves context, assembles a bounded prompt and makes exactly one
// completion call; a failed completion returns ErrCompletion rather than
// a degraded answer.
func (c *Composer) Compose(ctx context.Context, question string, persona Persona) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	question = truncate(question, c.cfg.MaxQuestionChars)

	query := intent.Classify(question)

	if text, handled := c.dispatcher.Execute(ctx, query); handled {
		ans := Answer{
			Answer:    text,
			Sources:   []string{structuredSource},
			QueryType: query.Type,
		}
		c.record(ctx, question, ans)
		return ans, nil
	}

	// A broken document store must not break the answer: proceed with an
	// empty context and let the prompt say nothing relevant was found.
	matches, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		c.logger.Warn("retrieval failed, answering without context", "error", err)
		matches = nil
	}

	contextText, sources := c.assembleContext(matches)
	prompt := c.buildPrompt(contextText, question)

	resp, err := c.generator.Generate(ctx,
		ai.WithModelName(c.cfg.ModelName),
		ai.WithSystem(SystemPrompt(persona)),
		ai.WithPrompt(prompt),
		ai.WithConfig(map[string]any{
			"temperature":     c.cfg.Temperature,
			"maxOutputTokens": c.cfg.MaxTokens,
		}),
	)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	ans := Answer{
		Answer:    resp.Text(),
		Sources:   sources,
		QueryType: intent.Semantic,
	}
	c.record(ctx, question, ans)
	return ans, nil
}

// assembleContext concatenates retrieved documents up to the context
// budget. A document that does not fit whole is skipped, never split, so
// the model only ever sees complete fragments.
func (c *Composer) assembleContext(matches []document.Match) (string, []string) {
	var b strings.Builder
	var sources []string

	for _, m := range matches {
		fragment := fmt.Sprintf("[%s]\n%s\n\n", m.Filename, m.Content)
		if c.cfg.MaxContextChars > 0 && b.Len()+len(fragment) > c.cfg.MaxContextChars {
			c.logger.Debug("skipping document over context budget",
				"id", m.ID, "filename", m.Filename, "size", len(fragment))
			continue
		}
		b.WriteString(fragment)
		sources = append(sources, m.Filename)
	}
	return b.String(), sources
}

// buildPrompt renders the user prompt, hard-capped at the prompt budget.
func (c *Composer) buildPrompt(contextText, question string) string {
	if contextText == "" {
		contextText = "(nenhum documento relevante encontrado)"
	}
	prompt := fmt.Sprintf("Contexto:\n%s\nPergunta: %s", contextText, question)
	return truncate(prompt, c.cfg.MaxPromptChars)
}

func (c *Composer) record(ctx context.Context, question string, ans Answer) {
	if c.recorder == nil {
		return
	}
	if _, err := c.recorder.Append(ctx, question, ans.Answer, ans.Sources); err != nil {
		c.logger.Warn("failed to record exchange", "error", err)
	}
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
