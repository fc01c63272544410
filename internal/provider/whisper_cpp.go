package provider

// WhisperCppProvider implements Provider for local whisper.cpp transcription
type WhisperCppProvider struct{}

func (p *WhisperCppProvider) Name() string {
	return ProviderWhisperCpp
}

func (p *WhisperCppProvider) RequiresAPIKey() bool {
	return false
}

func (p *WhisperCppProvider) ValidateAPIKey(key string) bool {
	return true // no API key needed
}

func (p *WhisperCppProvider) IsLocal() bool {
	return true
}

func (p *WhisperCppProvider) Models() []Model {
	// https://github.com/ggml-org/whisper.cpp#models
	ids := []struct{ id, name, desc string }{
		{"base", "Base", "Multilingual, fast"},
		{"small", "Small", "Multilingual, balanced"},
		{"medium", "Medium", "Multilingual, accurate"},
		{"large-v3-turbo", "Large v3 Turbo", "Multilingual, best accuracy per second"},
	}

	models := make([]Model, 0, len(ids))
	for _, m := range ids {
		models = append(models, Model{
			ID:          m.id,
			Name:        m.name,
			Description: m.desc,
			Type:        Transcription,
			Local:       true,
			AdapterType: AdapterWhisperCpp,
		})
	}
	return models
}

func (p *WhisperCppProvider) DefaultModel(t ModelType) string {
	if t == Transcription {
		return "base"
	}
	return ""
}
