package testutil

import (
	"context"
	"encoding/json"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealplan/model"
)

// Chunk is one scripted stream fragment: text or tool calls
type Chunk struct {
	Text  string
	Calls []model.ToolCall
}

// Text builds a text chunk
func Text(s string) Chunk { return Chunk{Text: s} }

// Call builds a single tool call chunk
func Call(name string, args map[string]any) Chunk {
	return Chunk{Calls: []model.ToolCall{{Name: name, Arguments: args}}}
}

// Request records what a provider method was called with
type Request struct {
	Messages []model.Message
	Tools    []string
	Schema   json.RawMessage
}

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatWithToolsFunc  func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error
	ChatStructuredFunc func(ctx context.Context, messages []model.Message, schema json.RawMessage, callback model.StreamCallback) error
	PingFunc           func(ctx context.Context) error

	mu                 sync.Mutex
	currentModel       string
	toolRequests       []Request
	structuredRequests []Request
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatWithToolsFunc = func(ctx context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		return Emit(ctx, cb, Text("Mock response with tools"))
	}
	mock.ChatStructuredFunc = func(ctx context.Context, _ []model.Message, _ json.RawMessage, cb model.StreamCallback) error {
		return Emit(ctx, cb, Text(ValidMealPlanJSON))
	}
	mock.PingFunc = func(context.Context) error { return nil }
	return mock
}

// Emit streams chunks to callback in order, stopping early when ctx is done
// or the callback returns an error.
func Emit(ctx context.Context, callback model.StreamCallback, chunks ...Chunk) error {
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if callback == nil {
			continue
		}
		if err := callback(c.Text, c.Calls); err != nil {
			return err
		}
	}
	return nil
}

// ScriptToolRounds makes successive ChatWithTools calls stream successive
// scripts. Calls past the end of the script stream nothing.
func (m *MockProvider) ScriptToolRounds(rounds ...[]Chunk) {
	var mu sync.Mutex
	next := 0
	m.ChatWithToolsFunc = func(ctx context.Context, _ []model.Message, _ []mcptypes.Tool, cb model.StreamCallback) error {
		mu.Lock()
		i := next
		next++
		mu.Unlock()
		if i >= len(rounds) {
			return nil
		}
		return Emit(ctx, cb, rounds[i]...)
	}
}

// ScriptFinal makes ChatStructured stream the given chunks
func (m *MockProvider) ScriptFinal(chunks ...Chunk) {
	m.ChatStructuredFunc = func(ctx context.Context, _ []model.Message, _ json.RawMessage, cb model.StreamCallback) error {
		return Emit(ctx, cb, chunks...)
	}
}

func (m *MockProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	m.mu.Lock()
	m.toolRequests = append(m.toolRequests, Request{Messages: model.CloneMessages(messages), Tools: names})
	m.mu.Unlock()
	return m.ChatWithToolsFunc(ctx, messages, tools, callback)
}

func (m *MockProvider) ChatStructured(ctx context.Context, messages []model.Message, schema json.RawMessage, callback model.StreamCallback) error {
	m.mu.Lock()
	m.structuredRequests = append(m.structuredRequests, Request{Messages: model.CloneMessages(messages), Schema: schema})
	m.mu.Unlock()
	return m.ChatStructuredFunc(ctx, messages, schema, callback)
}

// ToolRequests returns every ChatWithTools call seen so far
func (m *MockProvider) ToolRequests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.toolRequests...)
}

// StructuredRequests returns every ChatStructured call seen so far
func (m *MockProvider) StructuredRequests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.structuredRequests...)
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
