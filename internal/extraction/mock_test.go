package extraction

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jonathan/hiring-pipeline/internal/llm"
)

// MockLLMClient is a test double for llm.Client.
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockLLMClient) record(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	m.record(prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier, opts...)
	}
	return "", errors.New("GenerateContent not configured")
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	m.record(prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier, opts...)
	}
	return "", errors.New("GenerateJSON not configured")
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-" + string(tier) }

func (m *MockLLMClient) Close() error { return nil }

// byCategory answers GenerateJSON calls by matching the category prompt wording.
func byCategory(responses map[Category]string, errs map[Category]error) func(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	markers := map[Category]string{
		CategoryPersonalInfo:   "personal information",
		CategorySkills:         "every professional skill",
		CategoryExperience:     "work experience from",
		CategoryEducation:      "education from",
		CategoryCertifications: "certifications listed",
		CategoryLanguages:      "spoken languages",
	}
	return func(_ context.Context, prompt string, _ llm.ModelTier, _ ...llm.Option) (string, error) {
		for cat, marker := range markers {
			if strings.Contains(prompt, marker) {
				if err := errs[cat]; err != nil {
					return "", err
				}
				return responses[cat], nil
			}
		}
		return "", errors.New("unexpected prompt")
	}
}
