package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the sniff tool.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	Detect      DetectConfig      `yaml:"detect"`
	Engineering EngineeringConfig `yaml:"engineering"`
	Runs        RunsConfig        `yaml:"runs"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CatalogConfig holds smell catalog configuration.
type CatalogConfig struct {
	Path string `yaml:"path"` // JSON catalog file
}

// DetectConfig holds batch detection configuration.
type DetectConfig struct {
	Provider   string   `yaml:"provider"`    // provider id from the catalog
	PromptMode string   `yaml:"prompt_mode"` // "default", "draft", "draft_if_available"
	Normalize  string   `yaml:"normalize"`   // "strict" or "salvage"
	Output     string   `yaml:"output"`      // directory for llm_detection_results.csv
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
}

// EngineeringConfig holds prompt engineering configuration.
type EngineeringConfig struct {
	PromptMode string `yaml:"prompt_mode"`
	Normalize  string `yaml:"normalize"`
	Output     string `yaml:"output"` // directory for timestamped trial outputs
}

// RunsConfig holds run archive configuration.
type RunsConfig struct {
	Path string `yaml:"path"` // bbolt database file
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path: filepath.Join("config", "llm_catalog.json"),
		},
		Detect: DetectConfig{
			Provider:   "local-ollama",
			PromptMode: "default",
			Normalize:  "strict",
			Output:     "output",
			Includes:   []string{"**/*.py"},
			Excludes:   []string{"**/__pycache__/**", "**/.git/**", "**/venv/**", "**/.venv/**", "**/node_modules/**"},
		},
		Engineering: EngineeringConfig{
			PromptMode: "draft_if_available",
			Normalize:  "salvage",
			Output:     "output",
		},
		Runs: RunsConfig{
			Path: filepath.Join(".sniff", "runs.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for sniff.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try sniff.yaml / sniff.yml in the directory
	for _, name := range []string{"sniff.yaml", "sniff.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// Try .sniff/config.yaml
	path := filepath.Join(dir, ".sniff", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunsDBPath returns the path to the run archive database.
func RunsDBPath(dir string) string {
	return filepath.Join(dir, ".sniff", "runs.db")
}

// EnsureSniffDir ensures the .sniff directory exists.
func EnsureSniffDir(dir string) error {
	sniffDir := filepath.Join(dir, ".sniff")
	return os.MkdirAll(sniffDir, 0755)
}
