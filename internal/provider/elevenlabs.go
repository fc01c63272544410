package provider

// ElevenLabsProvider implements Provider for ElevenLabs services (transcription only)
type ElevenLabsProvider struct{}

func (p *ElevenLabsProvider) Name() string {
	return ProviderElevenLabs
}

func (p *ElevenLabsProvider) RequiresAPIKey() bool {
	return true
}

func (p *ElevenLabsProvider) ValidateAPIKey(key string) bool {
	// ElevenLabs API keys don't have a consistent prefix, just check non-empty
	return len(key) > 0
}

func (p *ElevenLabsProvider) IsLocal() bool {
	return false
}

func (p *ElevenLabsProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.elevenlabs.io", Path: "/v1/speech-to-text"}

	return []Model{
		{
			ID:          "scribe_v1",
			Name:        "Scribe v1",
			Description: "90+ languages, best accuracy",
			Type:        Transcription,
			AdapterType: AdapterElevenLabs,
			Endpoint:    endpoint,
		},
		{
			ID:          "scribe_v2",
			Name:        "Scribe v2",
			Description: "Lower latency batch transcription",
			Type:        Transcription,
			AdapterType: AdapterElevenLabs,
			Endpoint:    endpoint,
		},
	}
}

func (p *ElevenLabsProvider) DefaultModel(t ModelType) string {
	if t == Transcription {
		return "scribe_v1"
	}
	return ""
}
