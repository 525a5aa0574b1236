package parsing

import (
	"context"
	"errors"

	"github.com/jonathan/hiring-pipeline/internal/llm"
)

// MockLLMClient is a test double for llm.Client.
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error)

	lastPrompt string
	lastTier   llm.ModelTier
}

func (m *MockLLMClient) GenerateContent(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	return "", errors.New("GenerateContent not configured")
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	m.lastPrompt = prompt
	m.lastTier = tier
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier, opts...)
	}
	return "", errors.New("GenerateJSON not configured")
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-" + string(tier) }

func (m *MockLLMClient) Close() error { return nil }

func respond(body string) func(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	return func(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
		return body, nil
	}
}
