package provider

import "sort"

// Provider defines a transcription/LLM service provider
type Provider interface {
	Name() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	IsLocal() bool
	Models() []Model
	DefaultModel(t ModelType) string
}

var registry = make(map[string]Provider)

func init() {
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
	Register(&ElevenLabsProvider{})
	Register(&DeepgramProvider{})
	Register(&WhisperCppProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names, sorted
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListProvidersWithType returns providers that serve at least one model of type t
func ListProvidersWithType(t ModelType) []string {
	var names []string
	for _, name := range ListProviders() {
		for _, m := range registry[name].Models() {
			if m.Type == t {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// ModelsOfType returns a provider's models of the given type
func ModelsOfType(p Provider, t ModelType) []Model {
	var out []Model
	for _, m := range p.Models() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// FindModel looks up a model by provider and ID
func FindModel(providerName, modelID string) (*Model, bool) {
	p := GetProvider(BaseProviderName(providerName))
	if p == nil {
		return nil, false
	}
	for _, m := range p.Models() {
		if m.ID == modelID {
			return &m, true
		}
	}
	return nil, false
}
