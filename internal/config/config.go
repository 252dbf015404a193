// Package config provides configuration loading for tripd.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TRIPD_SERVER_PORT, TRIPD_LOGGING_LEVEL, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"time"

	"github.com/tripweave/tripd/internal/logging"
)

// Config is the root configuration for tripd.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     logging.Config    `koanf:"logging"`
	Extraction  ExtractionConfig  `koanf:"extraction"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Auth        AuthConfig        `koanf:"auth"`
	RateLimit   RateLimitConfig   `koanf:"ratelimit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ExtractionConfig holds POI engine settings.
type ExtractionConfig struct {
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`
}

// EmbeddingsConfig holds the embedding API client settings.
type EmbeddingsConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  string `koanf:"api_key"`
}

// VectorStoreConfig holds vector store settings. An empty Path keeps
// the store in memory.
type VectorStoreConfig struct {
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	Enabled    bool          `koanf:"enabled"`
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// RateLimitConfig holds per-user token bucket settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8090,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		Extraction: ExtractionConfig{
			ConfidenceThreshold: 0.5,
		},
		// Embeddings.BaseURL stays empty so the daemon runs fully
		// offline by default; setting it enables enrichment.
		Embeddings: EmbeddingsConfig{
			Model: "BAAI/bge-small-en-v1.5",
		},
		VectorStore: VectorStoreConfig{
			Collection: "tripd_trips",
			VectorSize: 384,
		},
		Auth: AuthConfig{
			Enabled:    false,
			SessionTTL: 12 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			RPS:     5,
			Burst:   10,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Extraction.ConfidenceThreshold < 0 || c.Extraction.ConfidenceThreshold > 1 {
		return fmt.Errorf("extraction confidence threshold must be in [0,1], got %v", c.Extraction.ConfidenceThreshold)
	}
	if c.VectorStore.VectorSize <= 0 {
		return fmt.Errorf("vector size must be positive, got %d", c.VectorStore.VectorSize)
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive, got %v", c.RateLimit.RPS)
	}
	return nil
}
