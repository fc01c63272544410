package transcriber

import (
	"context"
	"fmt"
	"time"

	"github.com/leonardotrapani/lyricsync/internal/models/whisper"
	"github.com/leonardotrapani/lyricsync/internal/provider"
)

// Adapter performs one recognition call on a WAV encoded clip
type Adapter interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Configuration for the transcription backend
type Config struct {
	Provider  string
	APIKey    string
	Language  string
	Model     string
	ModelPath string // whisper-cpp only
	Keywords  []string
	Threads   int // whisper-cpp only
	Timeout   time.Duration
}

// NewAdapter creates the adapter serving cfg.Provider and cfg.Model
func NewAdapter(cfg Config) (Adapter, error) {
	base := provider.BaseProviderName(cfg.Provider)
	p := provider.GetProvider(base)
	if p == nil {
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	model := cfg.Model
	if model == "" {
		model = p.DefaultModel(provider.Transcription)
	}
	m, ok := provider.FindModel(base, model)
	if !ok || m.Type != provider.Transcription {
		return nil, fmt.Errorf("unknown transcription model %q for provider %s", model, cfg.Provider)
	}

	if p.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key required (set %s)", base, provider.EnvVarForProvider(base))
	}

	switch m.AdapterType {
	case provider.AdapterOpenAI:
		return NewOpenAIAdapter(m.Endpoint, base, cfg.APIKey, model, cfg.Language, cfg.Keywords), nil
	case provider.AdapterElevenLabs:
		return NewElevenLabsAdapter(m.Endpoint, cfg.APIKey, model, cfg.Language, cfg.Keywords), nil
	case provider.AdapterDeepgram:
		return NewDeepgramBatchAdapter(m.Endpoint, cfg.APIKey, model, cfg.Language, cfg.Keywords), nil
	case provider.AdapterWhisperCpp:
		modelPath := cfg.ModelPath
		if modelPath == "" {
			modelPath = whisper.GetModelPath(model)
		}
		return NewWhisperCppAdapter(modelPath, cfg.Language, cfg.Threads), nil
	default:
		return nil, fmt.Errorf("no adapter for %s/%s", base, model)
	}
}
