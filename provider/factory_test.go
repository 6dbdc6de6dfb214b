package provider

import (
	"testing"

	"mealplan/config"
	"mealplan/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "ollama provider with defaults",
			config: Config{Type: ProviderTypeOllama},
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
		},
		{
			name: "openai provider",
			config: Config{
				Type:    ProviderTypeOpenAI,
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				APIKey:  "test-key",
			},
		},
		{
			name: "openai provider without key",
			config: Config{
				Type:  ProviderTypeOpenAI,
				Model: "gpt-4o-mini",
			},
			expectError: true,
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:    ProviderTypeAnthropic,
				BaseURL: "https://api.anthropic.com",
				Model:   "claude-sonnet-4-5-20250929",
				APIKey:  "test-key",
			},
		},
		{
			name:        "anthropic provider without key",
			config:      Config{Type: ProviderTypeAnthropic},
			expectError: true,
		},
		{
			name: "unknown provider type",
			config: Config{
				Type:    ProviderType("unknown"),
				BaseURL: "http://localhost",
				Model:   "test",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				if provider != nil {
					t.Error("expected nil provider, got non-nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider == nil {
				t.Fatal("expected non-nil provider, got nil")
			}
			var _ model.Provider = provider
		})
	}
}

// TestFactoryReturnsOllamaProvider verifies that the factory returns an actual OllamaProvider
func TestFactoryReturnsOllamaProvider(t *testing.T) {
	provider, err := NewProvider(Config{
		Type:    ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := provider.(*OllamaProvider); !ok {
		t.Errorf("expected *OllamaProvider, got %T", provider)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Provider:  config.ProviderAnthropic,
		ModelName: "claude-sonnet-4-5-20250929",
		APIKey:    "sk-test",
	}

	got := FromConfig(cfg)

	if got.Type != ProviderTypeAnthropic {
		t.Errorf("Type = %q, want %q", got.Type, ProviderTypeAnthropic)
	}
	if got.Model != cfg.ModelName || got.APIKey != cfg.APIKey {
		t.Errorf("model/key not carried over: %+v", got)
	}
	if got.BaseURL != cfg.BaseURL() {
		t.Errorf("BaseURL = %q, want %q", got.BaseURL, cfg.BaseURL())
	}
}
