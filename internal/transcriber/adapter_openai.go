package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/leonardotrapani/lyricsync/internal/provider"
	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Adapter for the OpenAI transcription API and
// OpenAI-compatible services such as Groq
type OpenAIAdapter struct {
	client   *openai.Client
	name     string
	model    string
	language string
	prompt   string
}

func NewOpenAIAdapter(endpoint *provider.EndpointConfig, name, apiKey, model, lang string, keywords []string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != nil && endpoint.BaseURL != "" {
		cfg.BaseURL = endpoint.BaseURL
	}
	return &OpenAIAdapter{
		client:   openai.NewClientWithConfig(cfg),
		name:     name,
		model:    model,
		language: lang,
		prompt:   strings.Join(keywords, ", "),
	}
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}

	req := openai.AudioRequest{
		Model:    a.model,
		Reader:   bytes.NewReader(wav),
		FilePath: "segment.wav",
		Language: a.language,
		Prompt:   a.prompt,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-adapter: API call failed after %v: %v", a.name, duration, err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", NewServiceError(a.name, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", NewServiceError(a.name, reqErr.HTTPStatusCode, err)
		}
		return "", NewServiceError(a.name, 0, fmt.Errorf("transcription: %w", err))
	}

	log.Printf("%s-adapter: transcribed %d bytes in %v: %q", a.name, len(wav), duration, resp.Text)
	return resp.Text, nil
}
