package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jiroshimaya/qiitastats/internal/qiita"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	API      API      `yaml:"api"`
	Sampling Sampling `yaml:"sampling"`
	Analysis Analysis `yaml:"analysis"`
	Output   Output   `yaml:"output"`
}

type API struct {
	BaseURL  string `yaml:"base_url"`
	TokenEnv string `yaml:"token_env"`
}

type Sampling struct {
	SampleSize int `yaml:"sample_size"`
	PerPage    int `yaml:"per_page"`
	MaxPages   int `yaml:"max_pages"`
}

type Analysis struct {
	Thresholds []int `yaml:"thresholds"`
}

type Output struct {
	Dir string `yaml:"dir"`
}

// ConfigDir returns the XDG config directory for qiitastats.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "qiitastats")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/qiitastats/config.yaml > ./config.yaml.
// An empty path with no error means no file exists and defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml", nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the
// built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		API: API{
			BaseURL:  qiita.DefaultBaseURL,
			TokenEnv: "QIITA_TOKEN",
		},
		Sampling: Sampling{
			SampleSize: 1000,
			PerPage:    qiita.MaxPerPage,
			MaxPages:   qiita.MaxPage,
		},
		Analysis: Analysis{Thresholds: []int{1, 2, 3}},
		Output:   Output{Dir: "results"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the API, sampling and analysis sections.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.TokenEnv == "" {
		return fmt.Errorf("api.token_env must not be empty")
	}
	if c.Sampling.SampleSize <= 0 {
		return fmt.Errorf("sampling.sample_size must be positive, got %d", c.Sampling.SampleSize)
	}
	if c.Sampling.PerPage < 1 || c.Sampling.PerPage > qiita.MaxPerPage {
		return fmt.Errorf("sampling.per_page must be between 1 and %d, got %d", qiita.MaxPerPage, c.Sampling.PerPage)
	}
	if c.Sampling.MaxPages < 1 {
		return fmt.Errorf("sampling.max_pages must be positive, got %d", c.Sampling.MaxPages)
	}
	if len(c.Analysis.Thresholds) == 0 {
		return fmt.Errorf("analysis.thresholds must not be empty")
	}
	for _, threshold := range c.Analysis.Thresholds {
		if threshold < 1 {
			return fmt.Errorf("analysis.thresholds must be positive, got %d", threshold)
		}
	}
	return nil
}

// Token reads the API token from the configured environment variable.
func (c *Config) Token() string {
	return os.Getenv(c.API.TokenEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
