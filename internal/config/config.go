// Package config loads service configuration from an optional file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. HIRING_MATCHING_LIMIT.
const EnvPrefix = "HIRING"

// Config is the full service configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Query     QueryConfig     `mapstructure:"query"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=1"`
	MinConns int32  `mapstructure:"min_conns" validate:"gte=0"`
}

// LLMConfig selects the generative backend.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=gemini"`
	APIKey   string `mapstructure:"api_key"`
	Lite     string `mapstructure:"lite_model"`
	Standard string `mapstructure:"standard_model"`
	Advanced string `mapstructure:"advanced_model"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider" validate:"oneof=openai-compatible gemini"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url" validate:"omitempty,url"`
	Model      string `mapstructure:"model" validate:"required"`
	Dimensions int    `mapstructure:"dimensions" validate:"eq=1024"`
}

// MatchingConfig holds similarity matcher defaults.
type MatchingConfig struct {
	Limit            int     `mapstructure:"limit" validate:"gte=1"`
	MinSimilarity    float64 `mapstructure:"min_similarity" validate:"gte=0,lte=1"`
	OverFetchFactor  int     `mapstructure:"over_fetch_factor" validate:"gte=1"`
	FlexibilityYears int     `mapstructure:"flexibility_years" validate:"gte=0"`
}

// QueryConfig holds natural-language query limits.
type QueryConfig struct {
	AnswerRows  int `mapstructure:"answer_rows" validate:"gte=1"`
	PreviewRows int `mapstructure:"preview_rows" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int     `mapstructure:"port" validate:"gte=1,lte=65535"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json pretty"`
}

// StorageConfig configures the optional CV archive.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether an archive endpoint is configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

var defaults = map[string]any{
	"database.max_conns":         10,
	"database.min_conns":         1,
	"llm.provider":               "gemini",
	"llm.lite_model":             "gemini-2.5-flash-lite",
	"llm.standard_model":         "gemini-2.5-flash",
	"llm.advanced_model":         "gemini-2.5-pro",
	"embedding.provider":         "openai-compatible",
	"embedding.base_url":         "https://dashscope.aliyuncs.com/compatible-mode/v1",
	"embedding.model":            "text-embedding-v3",
	"embedding.dimensions":       1024,
	"matching.limit":             3,
	"matching.min_similarity":    0.7,
	"matching.over_fetch_factor": 3,
	"matching.flexibility_years": 2,
	"query.answer_rows":          50,
	"query.preview_rows":         10,
	"server.port":                8080,
	"server.rate_limit_rps":      5.0,
	"server.rate_limit_burst":    10,
	"log.level":                  "info",
	"log.format":                 "json",
	"storage.bucket":             "cv-documents",
	"storage.use_ssl":            false,
}

// legacyEnv maps keys to the unprefixed variable names used by deployments.
var legacyEnv = map[string]string{
	"database.url":       "DATABASE_URL",
	"llm.api_key":        "GEMINI_API_KEY",
	"embedding.api_key":  "EMBEDDING_API_KEY",
	"storage.endpoint":   "MINIO_ENDPOINT",
	"storage.access_key": "MINIO_ACCESS_KEY",
	"storage.secret_key": "MINIO_SECRET_KEY",
}

// Load reads configuration. path may be empty; environment variables always apply
// and take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL (or %s_DATABASE_URL) is required", EnvPrefix)
	}
	return nil
}

// RequireLLM returns an error when no generative API key is configured.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY (or %s_LLM_API_KEY) is required", EnvPrefix)
	}
	return nil
}
