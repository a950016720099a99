// Package config loads and writes tally.yaml, the project configuration.
//
// String values may reference environment variables (e.g. ${HOME}); they are
// expanded when the file is loaded.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tallyhq/tally/internal/model"
)

// FileName is the config file name at the project root.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	General           GeneralConfig   `yaml:"general"`
	TransferDetection TransferConfig  `yaml:"transfer_detection"`
	Exclude           ExcludeConfig   `yaml:"exclude"`
	LLM               LLMConfig       `yaml:"llm"`
	Logging           LoggingConfig   `yaml:"logging"`
	Git               GitConfig       `yaml:"git"`
	Accounts          []model.Account `yaml:"accounts"`
}

// GeneralConfig holds project-relative directories.
type GeneralConfig struct {
	OutputDir          string `yaml:"output_dir"`
	EnrichmentCacheDir string `yaml:"enrichment_cache_dir"`
	LogsDir            string `yaml:"logs_dir"`
}

// TransferConfig controls checking-to-credit-card transfer pairing.
type TransferConfig struct {
	Keywords       []string `yaml:"keywords"`
	DateWindowDays int      `yaml:"date_window_days"`
}

// ExcludeConfig lists merchant substrings dropped before deduplication.
type ExcludeConfig struct {
	Patterns []string `yaml:"patterns"`
}

// LLMConfig selects the Tier 2 categorization provider.
type LLMConfig struct {
	Provider  string        `yaml:"provider"` // "anthropic", "gemini" or "none"
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk. Missing sections keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	cfg.Accounts = nil
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the constraints the pipeline relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.TransferDetection.DateWindowDays < 0 {
		errs = append(errs, fmt.Errorf("transfer_detection.date_window_days must be >= 0, got %d", c.TransferDetection.DateWindowDays))
	}
	seen := make(map[string]bool)
	for i, a := range c.Accounts {
		if a.Institution == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: institution is required", i))
		}
		if !a.Type.Valid() {
			errs = append(errs, fmt.Errorf("accounts[%d]: unknown account_type %q", i, a.Type))
		}
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("accounts[%d]: duplicate account name %q", i, a.Name))
		}
		seen[a.Name] = true
	}
	return errors.Join(errs...)
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			OutputDir:          "output",
			EnrichmentCacheDir: "enrichment-cache",
			LogsDir:            "logs",
		},
		TransferDetection: TransferConfig{
			Keywords:       []string{"PAYMENT", "AUTOPAY", "ONLINE PAYMENT", "PAYOFF"},
			DateWindowDays: 5,
		},
		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Timeout:   60 * time.Second,
			MaxTokens: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
		Accounts: []model.Account{
			{Name: "Chase Credit Card", Institution: "chase", Parser: "chase", Type: model.AccountTypeCreditCard, InputDir: "input/chase"},
			{Name: "Capital One Credit Card", Institution: "capital_one", Parser: "capital_one", Type: model.AccountTypeCreditCard, InputDir: "input/capital-one"},
			{Name: "Chase Checking", Institution: "chase_checking", Parser: "chase_checking", Type: model.AccountTypeChecking, InputDir: "input/chase-checking"},
		},
	}
}
