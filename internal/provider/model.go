package provider

// ModelType represents the type of a model
type ModelType int

const (
	Transcription ModelType = iota
	LLM
)

// Model describes one model a provider serves
type Model struct {
	ID          string          // unique identifier (e.g., "whisper-1", "gpt-4o-mini")
	Name        string          // display name
	Description string          // short description
	Type        ModelType       // transcription or LLM
	Local       bool            // runs locally (no API call)
	AdapterType string          // which adapter to use (e.g., "openai", "elevenlabs", "whisper-cpp")
	Endpoint    *EndpointConfig // nil for local models
}

// EndpointConfig holds HTTP endpoint configuration
type EndpointConfig struct {
	BaseURL string // e.g., "https://api.openai.com"
	Path    string // e.g., "/v1/audio/transcriptions"
}

// URL joins the base URL and path
func (e *EndpointConfig) URL() string {
	if e == nil {
		return ""
	}
	return e.BaseURL + e.Path
}
