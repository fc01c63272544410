package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/language"
	"github.com/leonardotrapani/lyricsync/internal/lyrics"
	"github.com/leonardotrapani/lyricsync/internal/media"
	"github.com/leonardotrapani/lyricsync/internal/models/whisper"
	"github.com/leonardotrapani/lyricsync/internal/provider"
)

// providerDisplayNames maps config provider names to human-readable names
var providerDisplayNames = map[string]string{
	provider.ConfigProviderOpenAI:            "OpenAI Whisper",
	provider.ConfigProviderGroqTranscription: "Groq Whisper",
	provider.ConfigProviderElevenLabs:        "ElevenLabs Scribe",
	provider.ConfigProviderDeepgram:          "Deepgram Nova",
	provider.ConfigProviderWhisperCpp:        "Whisper.cpp (local)",
	provider.ProviderGroq:                    "Groq",
}

func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func getConfiguredProviders(cfg *config.Config) []string {
	providers := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

// transcriptionProviderOptions lists every config provider name that can
// transcribe, configured ones first
func transcriptionProviderOptions(cfg *config.Config) []huh.Option[string] {
	names := []string{
		provider.ConfigProviderOpenAI,
		provider.ConfigProviderGroqTranscription,
		provider.ConfigProviderElevenLabs,
		provider.ConfigProviderDeepgram,
		provider.ConfigProviderWhisperCpp,
	}
	configured := map[string]bool{}
	for _, name := range getConfiguredProviders(cfg) {
		configured[name] = true
	}
	sort.SliceStable(names, func(i, j int) bool {
		return configured[provider.BaseProviderName(names[i])] && !configured[provider.BaseProviderName(names[j])]
	})

	options := make([]huh.Option[string], 0, len(names))
	for _, name := range names {
		label := getProviderDisplayName(name)
		if configured[provider.BaseProviderName(name)] {
			label += " ✓"
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

func buildModelDesc(m provider.Model) string {
	parts := []string{}
	if m.Description != "" {
		parts = append(parts, m.Description)
	} else if m.Name != "" {
		parts = append(parts, m.Name)
	}

	if m.Local {
		parts = append(parts, "local model")
		if info := whisper.GetModel(m.ID); info != nil {
			parts = append(parts, fmt.Sprintf("size %s", info.Size))
		}
	}

	if len(parts) == 0 {
		return m.ID
	}
	return strings.Join(parts, " - ")
}

func modelOptions(configProvider string, t provider.ModelType) []huh.Option[string] {
	p := provider.GetProvider(provider.BaseProviderName(configProvider))
	if p == nil {
		return nil
	}

	models := provider.ModelsOfType(p, t)
	options := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", m.ID, buildModelDesc(m)), m.ID))
	}
	return options
}

func llmProviderOptions() []huh.Option[string] {
	names := provider.ListProvidersWithType(provider.LLM)
	options := make([]huh.Option[string], 0, len(names))
	for _, name := range names {
		options = append(options, huh.NewOption(getProviderDisplayName(name), name))
	}
	return options
}

// languageOptions puts auto-detect first, then every known language
func languageOptions() []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption(language.Auto.Label(), language.Auto.Code)}
	for _, l := range language.List() {
		options = append(options, huh.NewOption(l.Label(), l.Code))
	}
	return options
}

func policyOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Tolerant - failed segments become empty lines", string(lyrics.PolicyTolerant)),
		huh.NewOption("Fail fast - stop at the first failed segment", string(lyrics.PolicyFailFast)),
	}
}

func isolationOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Spleeter (2 stems)", media.BackendSpleeter),
		huh.NewOption("Demucs (htdemucs, slower, cleaner)", media.BackendDemucs),
	}
}

func defaultIsolationModel(backend string) string {
	if backend == media.BackendDemucs {
		return "htdemucs"
	}
	return "spleeter:2stems"
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// parseKeywords splits a comma separated list, dropping blanks
func parseKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func formatTranscriptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Transcription  %s", StyleMuted.Render(fmt.Sprintf("%s/%s", cfg.Transcription.Provider, cfg.Transcription.Model)))
}

func formatSegmentationLabel(cfg *config.Config) string {
	return fmt.Sprintf("Segmentation   %s", StyleMuted.Render(fmt.Sprintf("%ds windows, %s, %d retries", cfg.Transcription.Window, cfg.Transcription.Policy, cfg.Transcription.Retries)))
}

func formatIsolationLabel(cfg *config.Config) string {
	return fmt.Sprintf("Isolation      %s", StyleMuted.Render(fmt.Sprintf("%s (%s)", cfg.Isolation.Backend, cfg.Isolation.Model)))
}

func formatLLMLabel(cfg *config.Config) string {
	if !cfg.LLM.Enabled {
		return fmt.Sprintf("LLM cleanup    %s", StyleMuted.Render("disabled"))
	}
	return fmt.Sprintf("LLM cleanup    %s", StyleMuted.Render(fmt.Sprintf("%s/%s", cfg.LLM.Provider, cfg.LLM.Model)))
}

func formatKeywordsLabel(cfg *config.Config) string {
	return fmt.Sprintf("Keywords       %s", StyleMuted.Render(fmt.Sprintf("%d set", len(cfg.Keywords))))
}

func formatServerLabel(cfg *config.Config) string {
	return fmt.Sprintf("Server         %s", StyleMuted.Render(fmt.Sprintf("%s, %d concurrent", cfg.Server.Address, cfg.Server.MaxConcurrent)))
}
