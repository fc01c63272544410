package provider

// DeepgramProvider implements Provider for Deepgram pre-recorded transcription
type DeepgramProvider struct{}

func (p *DeepgramProvider) Name() string {
	return ProviderDeepgram
}

func (p *DeepgramProvider) RequiresAPIKey() bool {
	return true
}

func (p *DeepgramProvider) ValidateAPIKey(key string) bool {
	return len(key) > 0
}

func (p *DeepgramProvider) IsLocal() bool {
	return false
}

func (p *DeepgramProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.deepgram.com", Path: "/v1/listen"}

	return []Model{
		{
			ID:          "nova-3",
			Name:        "Nova 3",
			Description: "Latest model, best accuracy",
			Type:        Transcription,
			AdapterType: AdapterDeepgram,
			Endpoint:    endpoint,
		},
		{
			ID:          "nova-2",
			Name:        "Nova 2",
			Description: "Previous generation, more languages",
			Type:        Transcription,
			AdapterType: AdapterDeepgram,
			Endpoint:    endpoint,
		},
	}
}

func (p *DeepgramProvider) DefaultModel(t ModelType) string {
	if t == Transcription {
		return "nova-3"
	}
	return ""
}
