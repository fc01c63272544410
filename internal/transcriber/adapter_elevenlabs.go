package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/leonardotrapani/lyricsync/internal/provider"
)

// ElevenLabsAdapter implements Adapter for ElevenLabs Scribe API
type ElevenLabsAdapter struct {
	client   *http.Client
	endpoint *provider.EndpointConfig
	apiKey   string
	model    string
	language string
	keywords []string
}

// ElevenLabsResponse represents the API response
type ElevenLabsResponse struct {
	Text string `json:"text"`
}

// NewElevenLabsAdapter creates an adapter for ElevenLabs Scribe API
// endpoint: the endpoint config (BaseURL + Path)
// model: model ID (e.g., "scribe_v1")
// lang: provider language code
func NewElevenLabsAdapter(endpoint *provider.EndpointConfig, apiKey, model, lang string, keywords []string) *ElevenLabsAdapter {
	return &ElevenLabsAdapter{
		client:   &http.Client{Timeout: 2 * time.Minute},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		language: lang,
		keywords: keywords,
	}
}

// Transcribe sends one WAV segment to ElevenLabs
func (a *ElevenLabsAdapter) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "segment.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}

	if err := writer.WriteField("model_id", a.model); err != nil {
		return "", fmt.Errorf("write model_id: %w", err)
	}

	if a.language != "" {
		if err := writer.WriteField("language_code", a.language); err != nil {
			return "", fmt.Errorf("write language_code: %w", err)
		}
	}

	if len(a.keywords) > 0 {
		keytermsJSON, err := json.Marshal(a.keywords)
		if err != nil {
			return "", fmt.Errorf("marshal keyterms: %w", err)
		}
		if err := writer.WriteField("keyterms", string(keytermsJSON)); err != nil {
			return "", fmt.Errorf("write keyterms: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint.URL(), &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", a.apiKey)

	start := time.Now()
	resp, err := a.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("elevenlabs-adapter: API call failed after %v: %v", duration, err)
		return "", NewServiceError(provider.ProviderElevenLabs, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("elevenlabs-adapter: API returned status %d: %s", resp.StatusCode, string(bodyBytes))
		return "", NewServiceError(provider.ProviderElevenLabs, resp.StatusCode, fmt.Errorf("%s", bodyBytes))
	}

	var result ElevenLabsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewServiceError(provider.ProviderElevenLabs, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	log.Printf("elevenlabs-adapter: transcribed %d bytes in %v: %q", len(wav), duration, result.Text)
	return result.Text, nil
}
