package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Matching.Limit)
	assert.InDelta(t, 0.7, cfg.Matching.MinSimilarity, 1e-9)
	assert.Equal(t, 3, cfg.Matching.OverFetchFactor)
	assert.Equal(t, 2, cfg.Matching.FlexibilityYears)
	assert.Equal(t, 1024, cfg.Embedding.Dimensions)
	assert.Equal(t, 50, cfg.Query.AnswerRows)
	assert.Equal(t, 10, cfg.Query.PreviewRows)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Standard)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	content := `
matching:
  limit: 7
  min_similarity: 0.5
server:
  port: 9000
`
	path := filepath.Join(t.TempDir(), "hiring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("HIRING_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Matching.Limit)
	assert.InDelta(t, 0.5, cfg.Matching.MinSimilarity, 1e-9)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hiring")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/hiring", cfg.Database.URL)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.NoError(t, cfg.RequireDatabase())
	assert.NoError(t, cfg.RequireLLM())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_Rejects(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Matching.MinSimilarity = 1.5
	cfg.Embedding.Dimensions = 768

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MinSimilarity")
	assert.Contains(t, err.Error(), "Dimensions")
}

func TestRequireDatabase_Empty(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireDatabase())
	assert.Error(t, cfg.RequireLLM())
}

func TestStorageEnabled(t *testing.T) {
	assert.False(t, StorageConfig{}.Enabled())
	assert.True(t, StorageConfig{Endpoint: "localhost:9000", Bucket: "cv"}.Enabled())
}
