package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config selects and configures the LLM backend. It is filled from the
// "llm" section of the application config.
type Config struct {
	Provider string `koanf:"provider" validate:"omitempty,oneof=anthropic openai gemini mock"`

	Anthropic ProviderConfig `koanf:"anthropic"`
	OpenAI    ProviderConfig `koanf:"openai"`
	Gemini    ProviderConfig `koanf:"gemini"`
	Retry     RetryConfig    `koanf:"retry"`

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

// ProviderConfig holds the credentials of one backend. BaseURL is only
// honoured by the OpenAI client, for compatible gateways.
type ProviderConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

// RetryConfig controls exponential backoff of transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" validate:"min=1"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier" validate:"min=1"`
}

// DefaultConfig returns the defaults. No provider is selected until a key
// is configured or discovered.
func DefaultConfig() Config {
	return Config{
		Anthropic: ProviderConfig{Model: "claude-haiku"},
		OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:    ProviderConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// Discover fills in a provider from the vendors' conventional environment
// variables when none is configured. It reports whether a provider is set
// afterwards.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	probes := []struct {
		env      string
		provider string
		target   *ProviderConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &c.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &c.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &c.Anthropic},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			c.Provider = p.provider
			if p.target.APIKey == "" {
				p.target.APIKey = k
			}
			return true
		}
	}
	return false
}

// Selected returns the configuration of the chosen provider.
func (c Config) Selected() ProviderConfig {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGemini:
		return c.Gemini
	}
	return ProviderConfig{}
}

// Validate checks that the chosen provider can be constructed.
func (c Config) Validate() error {
	switch c.Provider {
	case "":
		return fmt.Errorf("no LLM provider configured (set llm.provider or an API key)")
	case ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		if c.Selected().APIKey == "" {
			return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
