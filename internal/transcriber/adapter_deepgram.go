package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leonardotrapani/lyricsync/internal/provider"
)

// DeepgramBatchAdapter implements Adapter for Deepgram pre-recorded transcription
type DeepgramBatchAdapter struct {
	client   *http.Client
	endpoint *provider.EndpointConfig
	apiKey   string
	model    string
	language string
	keywords []string
}

type deepgramBatchResponse struct {
	Results *deepgramBatchResults `json:"results,omitempty"`
	Error   *deepgramError        `json:"error,omitempty"`
}

type deepgramBatchResults struct {
	Channels []deepgramBatchChannel `json:"channels,omitempty"`
}

type deepgramBatchChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives,omitempty"`
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type deepgramError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewDeepgramBatchAdapter creates a new batch adapter for Deepgram
func NewDeepgramBatchAdapter(endpoint *provider.EndpointConfig, apiKey, model, lang string, keywords []string) *DeepgramBatchAdapter {
	return &DeepgramBatchAdapter{
		client:   &http.Client{Timeout: 2 * time.Minute},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		language: lang,
		keywords: keywords,
	}
}

// Transcribe sends one WAV segment to Deepgram's pre-recorded API
func (a *DeepgramBatchAdapter) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}

	apiURL, err := a.buildURL()
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+a.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	start := time.Now()
	resp, err := a.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("deepgram-adapter: API call failed after %v: %v", duration, err)
		return "", NewServiceError(provider.ProviderDeepgram, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewServiceError(provider.ProviderDeepgram, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewServiceError(provider.ProviderDeepgram, resp.StatusCode, fmt.Errorf("%s", body))
	}

	var result deepgramBatchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", NewServiceError(provider.ProviderDeepgram, resp.StatusCode, fmt.Errorf("parse response: %w", err))
	}

	if result.Error != nil {
		return "", NewServiceError(provider.ProviderDeepgram, resp.StatusCode, fmt.Errorf("%s", result.Error.Message))
	}

	if result.Results == nil || len(result.Results.Channels) == 0 ||
		len(result.Results.Channels[0].Alternatives) == 0 {
		return "", ErrNoSpeech
	}

	text := result.Results.Channels[0].Alternatives[0].Transcript
	log.Printf("deepgram-adapter: transcribed %d bytes in %v: %q", len(wav), duration, text)
	return text, nil
}

// buildURL constructs the API URL with query parameters
func (a *DeepgramBatchAdapter) buildURL() (string, error) {
	u, err := url.Parse(a.endpoint.URL())
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("model", a.model)
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")

	if lang := normalizeDeepgramLanguage(a.language); lang != "" {
		q.Set("language", lang)
	}

	// nova-3 uses "keyterm" (singular), others use "keywords" (plural)
	if len(a.keywords) > 0 {
		if strings.HasPrefix(a.model, "nova-3") {
			for _, k := range a.keywords {
				q.Add("keyterm", k)
			}
		} else {
			q.Set("keywords", strings.Join(a.keywords, ","))
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func normalizeDeepgramLanguage(code string) string {
	if strings.EqualFold(code, "en") || strings.EqualFold(code, "en-us") || strings.EqualFold(code, "en_us") {
		return "en-US"
	}
	return code
}
