package model

import (
	"context"
	"encoding/json"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM provider implementations (Ollama, OpenAI, Anthropic)
// using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations can import model, and the session
// loop can use the Provider interface without importing the provider package.
type Provider interface {
	// ChatWithTools streams a response to messages, advertising tools to the model.
	// The callback receives each fragment in arrival order.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// ChatStructured streams a response constrained to the given JSON schema.
	ChatStructured(ctx context.Context, messages []Message, schema json.RawMessage, callback StreamCallback) error

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response.
// A chunk carries either a text delta or tool calls; returning an error stops the stream.
type StreamCallback func(chunk string, toolCalls []ToolCall) error
