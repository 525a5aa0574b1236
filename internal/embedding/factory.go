package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
)

// Provider names accepted by New.
const (
	ProviderOpenAICompatible = "openai-compatible"
	ProviderGemini           = "gemini"
)

// Config selects and configures an embedding backend.
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (embedding.Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAICompatible, "":
		return NewHTTPEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions)
	case ProviderGemini:
		model := cfg.Model
		if model == DefaultModel {
			model = DefaultGeminiModel
		}
		return NewGeminiEmbedder(ctx, cfg.APIKey, model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}
