package agent

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Generator abstracts the model call so tests can substitute a mock.
type Generator interface {
	Generate(ctx context.Context, opts ...ai.GenerateOption) (*ai.ModelResponse, error)
}

// genkitGenerator is the production Generator backed by a Genkit
// instance with the configured provider plugin loaded.
type genkitGenerator struct {
	g *genkit.Genkit
}

// NewGenerator wraps a Genkit instance as a Generator.
func NewGenerator(g *genkit.Genkit) Generator {
	return &genkitGenerator{g: g}
}

func (gg *genkitGenerator) Generate(ctx context.Context, opts ...ai.GenerateOption) (*ai.ModelResponse, error) {
	return genkit.Generate(ctx, gg.g, opts...)
}
