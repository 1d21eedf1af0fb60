/*
Package config handles loading and validating toolkit configuration.

Configuration is layered with koanf: built-in defaults, then an optional
YAML file, then TOOLKIT_* environment variables (highest priority).

Example file:

	database:
	  path: ~/.editorial-toolkit/toolkit.db
	catalog:
	  path: catalog.yaml
	recommend:
	  cooldown: 24h
	  activity_limit: 100
	  concurrency: 4
	cache:
	  review_ttl: 1m
	breaker:
	  failure_threshold: 3
	  timeout: 30s
	logging:
	  level: info
	  format: json
*/
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the root configuration structure.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// CatalogConfig locates the YAML tool catalog.
type CatalogConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	// Cooldown is how long a shown tool is penalised for.
	Cooldown time.Duration `koanf:"cooldown" validate:"gt=0"`

	// ActivityLimit is how many recent events feed the user context.
	ActivityLimit int `koanf:"activity_limit" validate:"min=1,max=1000"`

	// Concurrency bounds parallel review/playbook reads per pass.
	Concurrency int `koanf:"concurrency" validate:"min=1,max=32"`
}

// CacheConfig controls the review cache. A zero TTL disables it.
type CacheConfig struct {
	ReviewTTL time.Duration `koanf:"review_ttl" validate:"min=0"`
}

// BreakerConfig configures the circuit breakers around storage reads.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: defaultDatabasePath()},
		Catalog:  CatalogConfig{Path: "catalog.yaml"},
		Recommend: RecommendConfig{
			Cooldown:      24 * time.Hour,
			ActivityLimit: 100,
			Concurrency:   4,
		},
		Cache: CacheConfig{ReviewTTL: time.Minute},
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			Timeout:          30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// GetDataDir returns ~/.editorial-toolkit.
func GetDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".editorial-toolkit"
	}
	return filepath.Join(home, ".editorial-toolkit")
}

func defaultDatabasePath() string {
	return filepath.Join(GetDataDir(), "toolkit.db")
}
