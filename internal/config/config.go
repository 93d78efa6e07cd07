// Package config loads roadmapper configuration from a YAML file with
// environment variable overrides. A missing config file is not an error;
// defaults plus environment are enough to run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"roadmapper/internal/provider"
)

// Config holds all roadmapper configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Provider configuration
	Provider ProviderConfig `yaml:"provider"`

	// Session storage
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Conversation settings
	Conversation ConversationConfig `yaml:"conversation"`
}

// ProviderConfig configures the reasoning provider.
type ProviderConfig struct {
	Provider    string  `yaml:"provider"` // groq, openai, gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// StoreConfig configures session persistence.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info
	File  string `yaml:"file"`
}

// ConversationConfig tunes the chat engine.
type ConversationConfig struct {
	// WindowSize bounds the message history per provider call.
	WindowSize int `yaml:"window_size"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "roadmapper",
		Version: "1.0.0",

		Provider: ProviderConfig{
			Provider:    "groq",
			Timeout:     "120s",
			MaxTokens:   8000,
			Temperature: 0.1,
		},

		Store: StoreConfig{
			DatabasePath: "data/roadmapper.db",
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "roadmapper.log",
		},

		Conversation: ConversationConfig{
			WindowSize: 10,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Provider
// keys are checked in priority order: Groq wins over OpenAI, which wins
// over Gemini.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Provider.APIKey = key
		c.Provider.Provider = "gemini"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Provider.APIKey = key
		c.Provider.Provider = "openai"
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.Provider.APIKey = key
		c.Provider.Provider = "groq"
	}

	if model := os.Getenv("ROADMAPPER_MODEL"); model != "" {
		c.Provider.Model = model
	}
	if url := os.Getenv("ROADMAPPER_BASE_URL"); url != "" {
		c.Provider.BaseURL = url
	}
	if path := os.Getenv("ROADMAPPER_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("ROADMAPPER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// ProviderTimeout returns the provider timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ProviderClientConfig converts the YAML section to the provider
// package's config type.
func (c *Config) ProviderClientConfig() provider.Config {
	return provider.Config{
		Provider:    provider.Provider(c.Provider.Provider),
		APIKey:      c.Provider.APIKey,
		BaseURL:     c.Provider.BaseURL,
		Model:       c.Provider.Model,
		Timeout:     c.ProviderTimeout(),
		MaxTokens:   c.Provider.MaxTokens,
		Temperature: c.Provider.Temperature,
	}
}
