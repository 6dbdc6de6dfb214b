// Package provider adapts model backends to the model.Provider interface.
//
// The session loop only ever talks to a model.Provider. Each implementation
// here translates the transcript and tool definitions into its backend's
// request types and streams the reply back as text chunks and tool calls:
//   - OllamaProvider: local Ollama server, tools plus a `format` JSON schema
//   - OpenAIProvider: OpenAI chat completions, tools plus a json_schema response format
//   - AnthropicProvider: Anthropic messages, tools plus a schema instruction
//
// NewProvider builds one from a Config; FromConfig maps the user config onto it.
package provider

import "mealplan/config"

// Note: The Provider interface and StreamCallback are defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama    ProviderType = config.ProviderOllama
	ProviderTypeOpenAI    ProviderType = config.ProviderOpenAI
	ProviderTypeAnthropic ProviderType = config.ProviderAnthropic
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/Anthropic (unused for Ollama)
}

// FromConfig maps the loaded application config onto a provider Config
func FromConfig(cfg *config.Config) Config {
	return Config{
		Type:    ProviderType(cfg.Provider),
		BaseURL: cfg.BaseURL(),
		Model:   cfg.ModelName,
		APIKey:  cfg.APIKey,
	}
}
