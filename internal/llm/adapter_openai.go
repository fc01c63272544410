package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Adapter using the chat completions API of OpenAI
// or an OpenAI-compatible provider
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

// NewOpenAIAdapter creates a chat adapter against baseURL
func NewOpenAIAdapter(cfg Config, baseURL string) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (a *OpenAIAdapter) Process(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: a.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(a.config.Keywords, a.config.Language)},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(text, a.config.CustomPrompt)},
		},
		Temperature: 0.3, // Low temperature for consistent cleanup
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-llm-adapter: API call failed after %v: %v", a.config.Provider, duration, err)
		return "", fmt.Errorf("%s chat completion: %w", a.config.Provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: no response choices", a.config.Provider)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("%s-llm-adapter: processed in %v: %q -> %q", a.config.Provider, duration, text, result)
	return result, nil
}
