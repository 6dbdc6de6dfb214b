package provider

import (
	"context"
	"encoding/json"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"mealplan/mcp"
	"mealplan/model"
	"mealplan/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
//
// It converts model.Message to api.Message and mcptypes.Tool to api.Tool on
// the way out, and api.ToolCall to model.ToolCall on the way back.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
// Empty baseURL and model fall back to the ollama package defaults.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// ChatWithTools streams a reply with tools advertised to the model
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	var ollamaTools []api.Tool
	if len(tools) > 0 {
		ollamaTools = mcp.ToOllama(tools)
	}

	return p.client.ChatWithTools(ctx, ConvertToOllamaMessages(messages), ollamaTools, wrapOllamaCallback(callback))
}

// ChatStructured streams a reply constrained to schema through Ollama's format field
func (p *OllamaProvider) ChatStructured(ctx context.Context, messages []model.Message, schema json.RawMessage, callback model.StreamCallback) error {
	return p.client.ChatWithFormat(ctx, ConvertToOllamaMessages(messages), schema, wrapOllamaCallback(callback))
}

func wrapOllamaCallback(callback model.StreamCallback) ollama.StreamCallback {
	return func(chunk string, ollamaCalls []api.ToolCall) error {
		if callback == nil {
			return nil
		}
		return callback(chunk, ConvertToProviderToolCalls(ollamaCalls))
	}
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// SupportsToolCalling reports whether the selected model is known to handle tools
func (p *OllamaProvider) SupportsToolCalling() bool {
	return p.client.SupportsToolCalling()
}

// Ping checks if the Ollama server is reachable
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
