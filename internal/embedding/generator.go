// Package embedding turns candidates and positions into fixed-length vectors for
// nearest-neighbor search.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// Dimensions is the vector length stored in the database.
const Dimensions = 1024

// Generator validates input and output around an embedding backend.
type Generator struct {
	backend embedding.Embedder
	dims    int
}

// NewGenerator wraps backend. Vectors of any length other than Dimensions are
// rejected.
func NewGenerator(backend embedding.Embedder) *Generator {
	return &Generator{backend: backend, dims: Dimensions}
}

// Embed returns the vector for text. Empty text fails with ErrEmptyText.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	vectors, err := g.backend.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding backend returned %d vectors for 1 input", len(vectors))
	}
	if len(vectors[0]) != g.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(vectors[0]), g.dims)
	}

	out := make([]float32, g.dims)
	for i, v := range vectors[0] {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedCandidate builds the candidate's canonical text and embeds it.
func (g *Generator) EmbedCandidate(ctx context.Context, c *types.CandidateProfile) ([]float32, string, error) {
	text, err := CandidateText(c)
	if err != nil {
		return nil, "", err
	}
	vec, err := g.Embed(ctx, text)
	return vec, text, err
}

// EmbedPosition builds the position's canonical text and embeds it.
func (g *Generator) EmbedPosition(ctx context.Context, p *types.PositionProfile) ([]float32, string, error) {
	text, err := PositionText(p)
	if err != nil {
		return nil, "", err
	}
	vec, err := g.Embed(ctx, text)
	return vec, text, err
}
