package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY" default:""`
	GenerationModel string `envconfig:"BULLETIN_GENERATION_MODEL" default:"gemini-2.0-flash"`

	EmbeddingEndpoint  string        `envconfig:"BULLETIN_EMBED_ENDPOINT" default:"http://127.0.0.1:8844/embed"`
	EmbeddingBatchSize int           `envconfig:"BULLETIN_EMBED_BATCH_SIZE" default:"32"`
	EmbeddingMaxLength int           `envconfig:"BULLETIN_EMBED_MAX_LENGTH" default:"512"`
	EmbeddingTimeout   time.Duration `envconfig:"BULLETIN_EMBED_TIMEOUT" default:"45s"`

	SummaryBatchSize    int           `envconfig:"BULLETIN_SUMMARY_BATCH_SIZE" default:"8"`
	SummaryBatchTimeout time.Duration `envconfig:"BULLETIN_SUMMARY_BATCH_TIMEOUT" default:"60s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.GenerationModel) == "" {
		return fmt.Errorf("BULLETIN_GENERATION_MODEL is required")
	}
	if strings.TrimSpace(c.EmbeddingEndpoint) == "" {
		return fmt.Errorf("BULLETIN_EMBED_ENDPOINT is required")
	}
	if c.EmbeddingBatchSize < 1 {
		return fmt.Errorf("BULLETIN_EMBED_BATCH_SIZE must be >= 1")
	}
	if c.EmbeddingMaxLength < 1 {
		return fmt.Errorf("BULLETIN_EMBED_MAX_LENGTH must be >= 1")
	}
	if c.EmbeddingTimeout < time.Second {
		return fmt.Errorf("BULLETIN_EMBED_TIMEOUT must be >= 1s")
	}
	if c.SummaryBatchSize < 1 {
		return fmt.Errorf("BULLETIN_SUMMARY_BATCH_SIZE must be >= 1")
	}
	if c.SummaryBatchTimeout < time.Second {
		return fmt.Errorf("BULLETIN_SUMMARY_BATCH_TIMEOUT must be >= 1s")
	}
	return nil
}
