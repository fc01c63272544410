package llm

import (
	"context"
	"fmt"

	"github.com/leonardotrapani/lyricsync/internal/provider"
)

// Adapter interface for LLM text processing
type Adapter interface {
	Process(ctx context.Context, text string) (string, error)
}

// Config holds LLM adapter configuration
type Config struct {
	Provider     string
	APIKey       string
	Model        string
	CustomPrompt string
	Keywords     []string
	Language     string
}

// NewAdapter creates an LLM adapter based on the provider. Every supported
// provider speaks the OpenAI chat completions protocol.
func NewAdapter(cfg Config) (Adapter, error) {
	p := provider.GetProvider(cfg.Provider)
	if p == nil {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	models := provider.ModelsOfType(p, provider.LLM)
	if len(models) == 0 {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", cfg.Provider)
	}

	if cfg.Model == "" {
		cfg.Model = p.DefaultModel(provider.LLM)
	}
	baseURL := models[0].Endpoint.BaseURL
	if m, ok := provider.FindModel(cfg.Provider, cfg.Model); ok && m.Endpoint != nil {
		baseURL = m.Endpoint.BaseURL
	}

	return NewOpenAIAdapter(cfg, baseURL), nil
}
