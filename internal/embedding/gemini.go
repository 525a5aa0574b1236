package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the Gemini embedding model used when none is configured.
const DefaultGeminiModel = "gemini-embedding-001"

// GeminiEmbedder embeds text with the Gemini embedding API. Gemini vectors are
// longer than Dimensions, so they are truncated and L2-renormalized.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

var _ embedding.Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a Gemini-backed embedder.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model, dimensions: Dimensions}, nil
}

// EmbedStrings implements embedding.Embedder.
func (g *GeminiEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	options := embedding.GetCommonOptions(&embedding.Options{}, opts...)
	name := g.model
	if options.Model != nil && *options.Model != "" {
		name = *options.Model
	}

	em := g.client.EmbeddingModel(name)
	em.TaskType = genai.TaskTypeRetrievalDocument

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed with Gemini: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float64, len(texts))
	for i, e := range resp.Embeddings {
		out[i] = truncateNormalize(e.Values, g.dimensions)
	}
	return out, nil
}

// Close releases the underlying client.
func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}

// truncateNormalize keeps the first n components and rescales to unit length.
func truncateNormalize(v []float32, n int) []float64 {
	if len(v) < n {
		n = len(v)
	}
	out := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		out[i] = float64(v[i])
		sum += out[i] * out[i]
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i := range out {
		out[i] /= norm
	}
	return out
}
