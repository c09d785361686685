package factory

import (
	"fmt"

	"scentence-be/pkg/llm"
	"scentence-be/pkg/llm/ollama"
	"scentence-be/pkg/llm/openai"
)

// Config holds the configuration needed to build a provider
type Config struct {
	Provider string // "ollama" | "openai"
	BaseURL  string
	APIKey   string
	Model    string
}

// NewProvider creates an LLMProvider based on config
func NewProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return openai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
