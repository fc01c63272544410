package provider

import "strings"

// GroqProvider implements Provider for Groq services
type GroqProvider struct{}

func (p *GroqProvider) Name() string {
	return ProviderGroq
}

func (p *GroqProvider) RequiresAPIKey() bool {
	return true
}

func (p *GroqProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "gsk_")
}

func (p *GroqProvider) IsLocal() bool {
	return false
}

func (p *GroqProvider) Models() []Model {
	// Groq speaks the OpenAI wire protocol under /openai/v1
	transcriptions := &EndpointConfig{BaseURL: "https://api.groq.com/openai/v1", Path: "/audio/transcriptions"}
	chat := &EndpointConfig{BaseURL: "https://api.groq.com/openai/v1", Path: "/chat/completions"}

	return []Model{
		{
			ID:          "whisper-large-v3",
			Name:        "Whisper Large v3",
			Description: "Best accuracy, multilingual",
			Type:        Transcription,
			AdapterType: AdapterOpenAI,
			Endpoint:    transcriptions,
		},
		{
			ID:          "whisper-large-v3-turbo",
			Name:        "Whisper Large v3 Turbo",
			Description: "Faster, slightly lower accuracy",
			Type:        Transcription,
			AdapterType: AdapterOpenAI,
			Endpoint:    transcriptions,
		},
		{
			ID:          "llama-3.3-70b-versatile",
			Name:        "Llama 3.3 70B",
			Description: "General purpose text model",
			Type:        LLM,
			AdapterType: AdapterOpenAI,
			Endpoint:    chat,
		},
		{
			ID:          "llama-3.1-8b-instant",
			Name:        "Llama 3.1 8B Instant",
			Description: "Low latency text model",
			Type:        LLM,
			AdapterType: AdapterOpenAI,
			Endpoint:    chat,
		},
	}
}

func (p *GroqProvider) DefaultModel(t ModelType) string {
	switch t {
	case Transcription:
		return "whisper-large-v3-turbo"
	case LLM:
		return "llama-3.3-70b-versatile"
	}
	return ""
}
