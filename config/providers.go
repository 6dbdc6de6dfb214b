package config

const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Providers lists the supported provider ids
var Providers = []string{ProviderOllama, ProviderOpenAI, ProviderAnthropic}

func IsKnownProvider(providerID string) bool {
	for _, p := range Providers {
		if p == providerID {
			return true
		}
	}
	return false
}

// ProviderDisplayName returns the display name for a provider
func ProviderDisplayName(providerID string) string {
	switch providerID {
	case ProviderOllama:
		return "Ollama"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return providerID
	}
}

// ProviderDefaultBaseURL returns the default base URL for a provider
func ProviderDefaultBaseURL(providerID string) string {
	switch providerID {
	case ProviderOllama:
		return DefaultOllamaHost
	case ProviderAnthropic:
		return "https://api.anthropic.com"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

// BaseURL returns the configured host, or the provider default when the
// host was left at the Ollama default for a cloud provider.
func (c *Config) BaseURL() string {
	if c.Host == "" || (c.Provider != ProviderOllama && c.Host == DefaultOllamaHost) {
		return ProviderDefaultBaseURL(c.Provider)
	}
	return c.Host
}
