package provider

import (
	"fmt"

	"roadmapper/internal/logging"
)

// New constructs a Client for the configured provider.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderGroq, ProviderOpenAI:
		c := NewOpenAIClient(cfg)
		logging.ProviderDebug("[Factory] created %s client model=%s", cfg.Provider, c.Model())
		return c, nil
	case ProviderGemini:
		c := NewGeminiClient(cfg)
		logging.ProviderDebug("[Factory] created Gemini client model=%s", c.Model())
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}
