package config

import (
	"fmt"

	"github.com/leonardotrapani/lyricsync/internal/language"
	"github.com/leonardotrapani/lyricsync/internal/lyrics"
	"github.com/leonardotrapani/lyricsync/internal/media"
	"github.com/leonardotrapani/lyricsync/internal/provider"
)

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("invalid server.address: empty")
	}
	if c.Server.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid server.max_concurrent: %d", c.Server.MaxConcurrent)
	}
	if c.Server.QueueTimeout < 0 {
		return fmt.Errorf("invalid server.queue_timeout: %v", c.Server.QueueTimeout)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid server.request_timeout: %v", c.Server.RequestTimeout)
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("invalid storage.upload_dir: empty")
	}
	if c.Storage.OutputDir == "" {
		return fmt.Errorf("invalid storage.output_dir: empty")
	}

	if c.Audio.DecodeSampleRate <= 0 {
		return fmt.Errorf("invalid audio.decode_sample_rate: %d", c.Audio.DecodeSampleRate)
	}
	if c.Audio.DecodeChannels <= 0 {
		return fmt.Errorf("invalid audio.decode_channels: %d", c.Audio.DecodeChannels)
	}
	if c.Audio.RecognitionSampleRate < 0 {
		return fmt.Errorf("invalid audio.recognition_sample_rate: %d", c.Audio.RecognitionSampleRate)
	}
	if c.Audio.ConvertTimeout <= 0 {
		return fmt.Errorf("invalid audio.convert_timeout: %v", c.Audio.ConvertTimeout)
	}

	switch c.Isolation.Backend {
	case media.BackendSpleeter, media.BackendDemucs:
	default:
		return fmt.Errorf("invalid isolation.backend: %q (must be spleeter or demucs)", c.Isolation.Backend)
	}
	if c.Isolation.Timeout <= 0 {
		return fmt.Errorf("invalid isolation.timeout: %v", c.Isolation.Timeout)
	}

	if err := c.validateTranscription(); err != nil {
		return err
	}

	if c.LLM.Enabled {
		if err := c.validateLLM(); err != nil {
			return err
		}
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("invalid logging: rotation limits must not be negative")
	}

	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	if t.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}

	base := provider.BaseProviderName(t.Provider)
	p := provider.GetProvider(base)
	if p == nil || base == provider.ProviderGroq && t.Provider != provider.ConfigProviderGroqTranscription {
		return fmt.Errorf("unsupported transcription.provider: %s (must be openai, groq-transcription, elevenlabs, deepgram, or whisper-cpp)", t.Provider)
	}

	if t.Model != "" {
		m, ok := provider.FindModel(base, t.Model)
		if !ok || m.Type != provider.Transcription {
			return fmt.Errorf("invalid model for %s: %s", t.Provider, t.Model)
		}
	}

	if !language.IsValidCode(t.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", t.Language)
	}

	if p.RequiresAPIKey() {
		key := c.resolveAPIKeyForProvider(t.Provider)
		if key == "" {
			return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key, transcription.api_key) or environment variable (%s)",
				base, base, provider.EnvVarForProvider(base))
		}
	}

	if t.Window <= 0 {
		return fmt.Errorf("invalid transcription.window: %d (must be a positive number of seconds)", t.Window)
	}
	if _, err := lyrics.ParsePolicy(t.Policy); err != nil {
		return fmt.Errorf("invalid transcription.policy: %w", err)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", t.Timeout)
	}
	if t.Retries < 0 {
		return fmt.Errorf("invalid transcription.retries: %d", t.Retries)
	}
	if t.RetryBackoff < 0 {
		return fmt.Errorf("invalid transcription.retry_backoff: %v", t.RetryBackoff)
	}
	if t.Threads < 0 {
		return fmt.Errorf("invalid transcription.threads: %d", t.Threads)
	}

	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider required when llm.enabled = true")
	}

	p := provider.GetProvider(c.LLM.Provider)
	if p == nil || len(provider.ModelsOfType(p, provider.LLM)) == 0 {
		return fmt.Errorf("invalid llm.provider: %s (must be openai or groq)", c.LLM.Provider)
	}

	if c.LLM.Model != "" {
		m, ok := provider.FindModel(c.LLM.Provider, c.LLM.Model)
		if !ok || m.Type != provider.LLM {
			return fmt.Errorf("invalid llm.model for %s: %s", c.LLM.Provider, c.LLM.Model)
		}
	}

	if c.resolveAPIKeyForLLMProvider(c.LLM.Provider) == "" {
		return fmt.Errorf("%s API key required for LLM: not found in config (providers.%s.api_key) or environment variable (%s)",
			c.LLM.Provider, c.LLM.Provider, provider.EnvVarForProvider(c.LLM.Provider))
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm.timeout: %v", c.LLM.Timeout)
	}

	return nil
}
