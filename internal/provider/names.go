package provider

// Provider name constants for the registry
const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderElevenLabs = "elevenlabs"
	ProviderDeepgram   = "deepgram"
	ProviderWhisperCpp = "whisper-cpp"
)

// Config provider names (used in config file transcription.provider)
const (
	ConfigProviderOpenAI            = "openai"
	ConfigProviderGroqTranscription = "groq-transcription"
	ConfigProviderElevenLabs        = "elevenlabs"
	ConfigProviderDeepgram          = "deepgram"
	ConfigProviderWhisperCpp        = "whisper-cpp"
)

// Environment variable names for API keys
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGroqKey       = "GROQ_API_KEY"
	EnvElevenLabsKey = "ELEVENLABS_API_KEY"
	EnvDeepgramKey   = "DEEPGRAM_API_KEY"
)

// Adapter type constants for transcription backends
const (
	AdapterOpenAI     = "openai"
	AdapterElevenLabs = "elevenlabs"
	AdapterDeepgram   = "deepgram"
	AdapterWhisperCpp = "whisper-cpp"
)

// BaseProviderName maps config provider names to registry provider names
// e.g. "groq-transcription" -> "groq"
func BaseProviderName(configProvider string) string {
	switch configProvider {
	case ConfigProviderGroqTranscription:
		return ProviderGroq
	default:
		return configProvider
	}
}

// EnvVarForProvider returns the environment variable name for a provider's API key
func EnvVarForProvider(provider string) string {
	switch BaseProviderName(provider) {
	case ProviderOpenAI:
		return EnvOpenAIKey
	case ProviderGroq:
		return EnvGroqKey
	case ProviderElevenLabs:
		return EnvElevenLabsKey
	case ProviderDeepgram:
		return EnvDeepgramKey
	default:
		return ""
	}
}
