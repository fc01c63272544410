package pipeline

import (
	"fmt"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/llm"
	"github.com/leonardotrapani/lyricsync/internal/lyrics"
	"github.com/leonardotrapani/lyricsync/internal/media"
	"github.com/leonardotrapani/lyricsync/internal/transcriber"
)

// FromConfig wires the production converter, isolator, recognizer and
// optional refiner described by cfg
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	policy, err := lyrics.ParsePolicy(cfg.Transcription.Policy)
	if err != nil {
		return nil, err
	}

	adapter, err := transcriber.NewAdapter(cfg.ToTranscriberConfig())
	if err != nil {
		return nil, fmt.Errorf("create transcriber: %w", err)
	}

	isolator, err := media.NewIsolator(cfg.Isolation.Backend, cfg.Isolation.Binary, cfg.Isolation.Model, cfg.Isolation.Timeout)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Converter:  media.NewFFmpeg(cfg.Audio.FFmpegPath, cfg.Audio.ConvertTimeout),
		Isolator:   isolator,
		Recognizer: transcriber.NewClient(adapter, cfg.Transcription.Timeout),
	}

	if cfg.LLM.Enabled {
		refiner, err := llm.NewAdapter(cfg.ToLLMConfig())
		if err != nil {
			return nil, fmt.Errorf("create llm adapter: %w", err)
		}
		deps.Refiner = refiner
	}

	return New(deps, Options{
		TempDir: cfg.Storage.TempDir,
		Window:  cfg.Transcription.Window,
		Policy:  policy,
		Decode: media.ConvertOptions{
			SampleRate: cfg.Audio.DecodeSampleRate,
			Channels:   cfg.Audio.DecodeChannels,
		},
		RecognitionSampleRate: cfg.Audio.RecognitionSampleRate,
		Retries:               cfg.Transcription.Retries,
		RetryBackoff:          cfg.Transcription.RetryBackoff,
		RefineTimeout:         cfg.LLM.Timeout,
	})
}
