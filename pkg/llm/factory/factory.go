package factory

import (
	"fmt"

	"context-generator-be/pkg/llm"
	"context-generator-be/pkg/llm/gemini"
)

type ProviderConfig struct {
	Type        string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Type {
	case "gemini", "":
		p := gemini.NewGeminiProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
		if cfg.Temperature > 0 {
			p.Temperature = cfg.Temperature
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Type)
	}
}
