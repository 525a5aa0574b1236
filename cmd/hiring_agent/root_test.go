package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/server"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// isolate clears variables that would make commands reach real services.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "HIRING_DATABASE_URL", "GEMINI_API_KEY", "HIRING_LLM_API_KEY", "JWT_SECRET", "JWT_ISSUER", "JWT_EXPIRATION_HOURS"} {
		t.Setenv(key, "")
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "ingest-cv", "ingest-position", "match", "search", "ask", "backfill", "migrate", "token"} {
		assert.Contains(t, names, want)
	}
}

func TestFlagValidation(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"match without target", []string{"match"}, "exactly one of --candidate or --position"},
		{"match with both targets", []string{"match", "--candidate", "candidate_001", "--position", "position_001"}, "exactly one of --candidate or --position"},
		{"explain needs candidate", []string{"match", "--position", "position_001", "--explain"}, "--explain is only supported with --candidate"},
		{"position without source", []string{"ingest-position"}, "exactly one of --file or --url"},
		{"position with both sources", []string{"ingest-position", "--file", "a.txt", "--url", "https://x"}, "exactly one of --file or --url"},
		{"ingest-cv without files", []string{"ingest-cv"}, "requires at least 1 arg"},
		{"ask without question", []string{"ask"}, "requires at least 1 arg"},
		{"token without subject", []string{"token"}, `required flag(s) "subject" not set`},
		{"migrate without database", []string{"migrate"}, "DATABASE_URL"},
		{"search without database", []string{"search", "go", "developer"}, "DATABASE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	isolate(t)

	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestServeRequiresJWTSecret(t *testing.T) {
	isolate(t)

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "--no-auth")
}

func TestTokenCmd(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "cli-test-secret")

	out, err := execute(t, "token", "--subject", "recruiting-ui")
	require.NoError(t, err)

	jwtService := server.NewJWTService(&config.JWTConfig{Secret: "cli-test-secret", Issuer: config.DefaultIssuer, ExpirationHours: 24})
	claims, err := jwtService.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "recruiting-ui", claims.Subject)
	assert.Equal(t, "api", claims.Scope)
}
