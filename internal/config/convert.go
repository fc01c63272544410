package config

import (
	"os"

	"github.com/leonardotrapani/lyricsync/internal/language"
	"github.com/leonardotrapani/lyricsync/internal/llm"
	"github.com/leonardotrapani/lyricsync/internal/provider"
	"github.com/leonardotrapani/lyricsync/internal/transcriber"
)

func (c *Config) ToTranscriberConfig() transcriber.Config {
	config := transcriber.Config{
		Provider:  c.Transcription.Provider,
		Language:  language.Normalize(c.Transcription.Language),
		Model:     c.Transcription.Model,
		ModelPath: c.Transcription.ModelPath,
		Keywords:  c.Keywords,
		Threads:   c.Transcription.Threads,
		Timeout:   c.Transcription.Timeout,
	}

	config.APIKey = c.resolveAPIKeyForProvider(c.Transcription.Provider)

	return config
}

// ToLLMConfig returns the lyric refinement configuration
func (c *Config) ToLLMConfig() llm.Config {
	return llm.Config{
		Provider:     c.LLM.Provider,
		APIKey:       c.resolveAPIKeyForLLMProvider(c.LLM.Provider),
		Model:        c.LLM.Model,
		CustomPrompt: c.LLM.CustomPrompt,
		Keywords:     c.Keywords,
		Language:     c.Transcription.Language,
	}
}

// resolveAPIKeyForProvider returns the API key for a provider from multiple sources
func (c *Config) resolveAPIKeyForProvider(providerName string) string {
	baseName := provider.BaseProviderName(providerName)
	envVar := provider.EnvVarForProvider(providerName)

	if c.Providers != nil {
		if pc, ok := c.Providers[baseName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}

	if c.Transcription.APIKey != "" && provider.BaseProviderName(c.Transcription.Provider) == baseName {
		return c.Transcription.APIKey
	}

	if envVar != "" {
		return os.Getenv(envVar)
	}

	return ""
}

// resolveAPIKeyForLLMProvider skips transcription.api_key, which belongs to
// the transcription provider
func (c *Config) resolveAPIKeyForLLMProvider(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := provider.EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}
