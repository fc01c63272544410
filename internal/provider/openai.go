package provider

import "strings"

// OpenAIProvider implements Provider for OpenAI services
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) IsLocal() bool {
	return false
}

func (p *OpenAIProvider) Models() []Model {
	transcriptions := &EndpointConfig{BaseURL: "https://api.openai.com/v1", Path: "/audio/transcriptions"}
	chat := &EndpointConfig{BaseURL: "https://api.openai.com/v1", Path: "/chat/completions"}

	return []Model{
		{
			ID:          "whisper-1",
			Name:        "Whisper 1",
			Description: "OpenAI's production speech-to-text model",
			Type:        Transcription,
			AdapterType: AdapterOpenAI,
			Endpoint:    transcriptions,
		},
		{
			ID:          "gpt-4o-transcribe",
			Name:        "GPT-4o Transcribe",
			Description: "Higher accuracy on noisy audio",
			Type:        Transcription,
			AdapterType: AdapterOpenAI,
			Endpoint:    transcriptions,
		},
		{
			ID:          "gpt-4o-mini",
			Name:        "GPT-4o Mini",
			Description: "Fast and affordable GPT-4 variant",
			Type:        LLM,
			AdapterType: AdapterOpenAI,
			Endpoint:    chat,
		},
		{
			ID:          "gpt-4o",
			Name:        "GPT-4o",
			Description: "Most capable GPT-4 model",
			Type:        LLM,
			AdapterType: AdapterOpenAI,
			Endpoint:    chat,
		},
	}
}

func (p *OpenAIProvider) DefaultModel(t ModelType) string {
	switch t {
	case Transcription:
		return "whisper-1"
	case LLM:
		return "gpt-4o-mini"
	}
	return ""
}
