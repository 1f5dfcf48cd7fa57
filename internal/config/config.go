package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haqei/situation-engine/internal/features"
	"github.com/haqei/situation-engine/internal/orchestrator"
	"github.com/haqei/situation-engine/internal/ranker"
)

// #region config

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogSQLite   = "sqlite"
)

// Config is the process configuration.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	GRPCAddr       string `yaml:"grpc_addr"`       // feature service listener, empty disables
	VectorizerAddr string `yaml:"vectorizer_addr"` // remote vectorizer, empty hashes locally
	DBPath         string `yaml:"db_path"`         // analysis log and catalog store, empty disables
	CatalogSource  string `yaml:"catalog_source"`
	LogLevel       string `yaml:"log_level"`
	Locale         string `yaml:"locale"`

	FeatureTimeout    time.Duration `yaml:"feature_timeout"`
	VectorizerRetries int           `yaml:"vectorizer_retries"`
	FeatureDim        int           `yaml:"feature_dim"`
	HistorySize       int           `yaml:"history_size"`

	Ranker ranker.Config `yaml:"ranker"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:        ":8080",
		CatalogSource:     CatalogEmbedded,
		LogLevel:          "info",
		Locale:            ranker.LocaleEN,
		FeatureTimeout:    2 * time.Second,
		VectorizerRetries: 2,
		FeatureDim:        features.DefaultExtractorConfig().Dim,
		HistorySize:       100,
		Ranker:            ranker.DefaultConfig(),
	}
}

// #endregion config

// #region load

// Load reads the YAML file at path over the defaults, then applies
// environment overrides and finally overrides, in order. A missing file is
// not an error.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	cfg.Ranker.Locale = cfg.Locale
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.ListenAddr = envOr("SITUATION_LISTEN_ADDR", cfg.ListenAddr)
	cfg.GRPCAddr = envOr("SITUATION_GRPC_ADDR", cfg.GRPCAddr)
	cfg.VectorizerAddr = envOr("SITUATION_VECTORIZER_ADDR", cfg.VectorizerAddr)
	cfg.DBPath = envOr("SITUATION_DB_PATH", cfg.DBPath)
	cfg.CatalogSource = envOr("SITUATION_CATALOG_SOURCE", cfg.CatalogSource)
	cfg.LogLevel = envOr("SITUATION_LOG_LEVEL", cfg.LogLevel)
	cfg.Locale = envOr("SITUATION_LOCALE", cfg.Locale)

	if v := os.Getenv("SITUATION_FEATURE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SITUATION_FEATURE_TIMEOUT: %w", err)
		}
		cfg.FeatureTimeout = d
	}
	if v := os.Getenv("SITUATION_VECTORIZER_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SITUATION_VECTORIZER_RETRIES: %w", err)
		}
		cfg.VectorizerRetries = n
	}
	return nil
}

// #endregion load

// #region validate

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.FeatureTimeout <= 0 {
		return fmt.Errorf("validate config: feature_timeout must be positive, got %s", c.FeatureTimeout)
	}
	if c.VectorizerRetries < 0 {
		return fmt.Errorf("validate config: vectorizer_retries must not be negative")
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("validate config: history_size must be at least 1")
	}
	if c.FeatureDim < 1 {
		return fmt.Errorf("validate config: feature_dim must be at least 1")
	}
	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("validate config: catalog_source sqlite needs db_path")
		}
	default:
		return fmt.Errorf("validate config: unknown catalog_source %q", c.CatalogSource)
	}
	if err := c.Ranker.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// #endregion validate

// #region derived

// Orchestrator returns the pipeline configuration.
func (c Config) Orchestrator() orchestrator.Config {
	return orchestrator.Config{
		FeatureTimeout: c.FeatureTimeout,
		MaxRetries:     c.VectorizerRetries,
		RetryBackoff:   orchestrator.DefaultConfig().RetryBackoff,
		HistorySize:    c.HistorySize,
		Locale:         c.Locale,
	}
}

// #endregion derived

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
