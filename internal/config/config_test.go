package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/haqei/situation-engine/internal/ranker"
)

// #region helpers
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "situation.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// #endregion helpers

// #region load-tests
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_YAMLOverrides(t *testing.T) {
	path := writeFile(t, `
listen_addr: ":9090"
locale: ja
feature_timeout: 750ms
history_size: 10
ranker:
  complexity_threshold: 0.6
  rarity_tiers:
    - {max_count: 0, bonus: 15}
    - {max_count: 3, bonus: 5}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.Locale != "ja" || cfg.HistorySize != 10 {
		t.Errorf("unexpected top-level values: %+v", cfg)
	}
	if cfg.FeatureTimeout != 750*time.Millisecond {
		t.Errorf("feature timeout = %s", cfg.FeatureTimeout)
	}
	if cfg.Ranker.Locale != "ja" || cfg.Ranker.ComplexityThreshold != 0.6 {
		t.Errorf("unexpected ranker values: %+v", cfg.Ranker)
	}
	wantTiers := []ranker.RarityTier{{MaxCount: 0, Bonus: 15}, {MaxCount: 3, Bonus: 5}}
	if diff := cmp.Diff(wantTiers, cfg.Ranker.RarityTiers); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Ranker.HighMovement) == 0 {
		t.Error("unset ranker fields should keep defaults")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "listen_addr: \":9090\"\nlog_level: warn\n")
	t.Setenv("SITUATION_LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("SITUATION_VECTORIZER_ADDR", "localhost:50051")
	t.Setenv("SITUATION_FEATURE_TIMEOUT", "3s")
	t.Setenv("SITUATION_VECTORIZER_RETRIES", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7000" || cfg.LogLevel != "warn" {
		t.Errorf("unexpected values: listen=%s level=%s", cfg.ListenAddr, cfg.LogLevel)
	}
	if cfg.VectorizerAddr != "localhost:50051" || cfg.FeatureTimeout != 3*time.Second || cfg.VectorizerRetries != 0 {
		t.Errorf("unexpected env overrides: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"malformed yaml", "listen_addr: [", nil},
		{"bad duration env", "", map[string]string{"SITUATION_FEATURE_TIMEOUT": "soon"}},
		{"bad retries env", "", map[string]string{"SITUATION_VECTORIZER_RETRIES": "many"}},
		{"unknown locale", "locale: fr\n", nil},
		{"zero timeout", "feature_timeout: 0s\n", nil},
		{"sqlite without db", "catalog_source: sqlite\n", nil},
		{"unknown catalog source", "catalog_source: http\n", nil},
		{"non-monotonic tiers", "ranker:\n  rarity_tiers:\n    - {max_count: 0, bonus: 5}\n    - {max_count: 2, bonus: 9}\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(writeFile(t, tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_OverridesApplyBeforeValidation(t *testing.T) {
	path := writeFile(t, "catalog_source: sqlite\n")
	cfg, err := Load(path, func(c *Config) { c.DBPath = "situation.db" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "situation.db" || cfg.CatalogSource != CatalogSQLite {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

// #endregion load-tests

// #region derived-tests
func TestOrchestratorConfig(t *testing.T) {
	cfg := Default()
	cfg.FeatureTimeout = time.Second
	cfg.VectorizerRetries = 1
	cfg.Locale = "ja"
	oc := cfg.Orchestrator()
	if oc.FeatureTimeout != time.Second || oc.MaxRetries != 1 || oc.Locale != "ja" || oc.HistorySize != 100 {
		t.Errorf("unexpected orchestrator config: %+v", oc)
	}
}

// #endregion derived-tests
