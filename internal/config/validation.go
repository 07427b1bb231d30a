package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid values (fail-fast).
// Returns the first error found, wrapped around a sentinel for errors.Is.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case ProviderGemini, ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (must be one of: gemini, ollama, openai)", ErrInvalidProvider, c.Provider)
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}

	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %.2f (must be between 0.0 and 2.0)", ErrInvalidTemperature, c.Temperature)
	}

	if c.MaxTokens < 1 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidMaxTokens, c.MaxTokens)
	}

	if c.EmbeddingDim < 1 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidDimension, c.EmbeddingDim)
	}

	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("%w: %.2f (must be between 0.0 and 1.0)", ErrInvalidThreshold, c.MatchThreshold)
	}

	if c.MatchCount < 1 || c.MatchCount > 50 {
		return fmt.Errorf("%w: %d (must be between 1 and 50)", ErrInvalidMatchCount, c.MatchCount)
	}

	for name, budget := range map[string]int{
		"embed_input_chars":  c.EmbedInputChars,
		"per_doc_chars":      c.PerDocChars,
		"max_context_chars":  c.MaxContextChars,
		"max_question_chars": c.MaxQuestionChars,
		"max_prompt_chars":   c.MaxPromptChars,
	} {
		if budget < 1 {
			return fmt.Errorf("%w: %s = %d (must be positive)", ErrInvalidBudget, name, budget)
		}
	}

	if c.UpsertBatchSize < 1 || c.UpsertBatchSize > MaxUpsertBatchSize {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidBatchSize, c.UpsertBatchSize, MaxUpsertBatchSize)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be between 1 and 65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
