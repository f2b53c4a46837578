package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.API.BaseURL != "https://qiita.com/api/v2" {
		t.Errorf("unexpected base_url %q", cfg.API.BaseURL)
	}
	if cfg.API.TokenEnv != "QIITA_TOKEN" {
		t.Errorf("unexpected token_env %q", cfg.API.TokenEnv)
	}
	if cfg.Sampling.SampleSize != 1000 {
		t.Errorf("expected sample_size 1000, got %d", cfg.Sampling.SampleSize)
	}
	if cfg.Sampling.PerPage != 100 {
		t.Errorf("expected per_page 100, got %d", cfg.Sampling.PerPage)
	}
	if len(cfg.Analysis.Thresholds) != 3 {
		t.Errorf("expected 3 thresholds, got %v", cfg.Analysis.Thresholds)
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("expected output dir 'results', got %q", cfg.Output.Dir)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
sampling:
  sample_size: 200
output:
  dir: /tmp/reports
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Sampling.SampleSize != 200 {
		t.Errorf("expected sample_size 200, got %d", cfg.Sampling.SampleSize)
	}
	if cfg.Output.Dir != "/tmp/reports" {
		t.Errorf("expected output dir '/tmp/reports', got %q", cfg.Output.Dir)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Sampling.PerPage != 100 {
		t.Errorf("expected default per_page 100, got %d", cfg.Sampling.PerPage)
	}
	if cfg.API.TokenEnv != "QIITA_TOKEN" {
		t.Errorf("expected default token_env, got %q", cfg.API.TokenEnv)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("sampling: [broken")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Sampling.SampleSize != 1000 {
		t.Errorf("expected sample_size 1000, got %d", cfg.Sampling.SampleSize)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.API.BaseURL == "" {
		t.Error("expected default base_url")
	}
}

func TestResolveConfigPath_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}
}

func TestResolveConfigPath_ExplicitMissing(t *testing.T) {
	_, err := ResolveConfigPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base_url", func(c *Config) { c.API.BaseURL = "" }},
		{"empty token_env", func(c *Config) { c.API.TokenEnv = "" }},
		{"zero sample_size", func(c *Config) { c.Sampling.SampleSize = 0 }},
		{"per_page above cap", func(c *Config) { c.Sampling.PerPage = 500 }},
		{"zero max_pages", func(c *Config) { c.Sampling.MaxPages = 0 }},
		{"no thresholds", func(c *Config) { c.Analysis.Thresholds = nil }},
		{"zero threshold", func(c *Config) { c.Analysis.Thresholds = []int{1, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(DefaultConfigYAML)
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestToken(t *testing.T) {
	t.Setenv("QIITASTATS_TEST_TOKEN", "secret")

	cfg := &Config{API: API{TokenEnv: "QIITASTATS_TEST_TOKEN"}}
	if got := cfg.Token(); got != "secret" {
		t.Errorf("expected token from environment, got %q", got)
	}

	cfg.API.TokenEnv = "QIITASTATS_TEST_TOKEN_UNSET"
	if got := cfg.Token(); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}
