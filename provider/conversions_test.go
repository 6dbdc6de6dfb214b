package provider

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"

	"mealplan/model"
	"mealplan/provider/testutil"
)

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.Message
		expected []api.Message
	}{
		{
			name:     "empty slice",
			input:    []model.Message{},
			expected: []api.Message{},
		},
		{
			name:  "single message",
			input: []model.Message{model.UserMessage("Hello")},
			expected: []api.Message{
				{Role: "user", Content: "Hello"},
			},
		},
		{
			name:  "tool result keeps tool name",
			input: []model.Message{model.ToolMessage("get_meal_notes", "[]")},
			expected: []api.Message{
				{Role: "tool", Content: "[]", ToolName: "get_meal_notes"},
			},
		},
		{
			name:  "conversation",
			input: testutil.TestMessages(),
			expected: []api.Message{
				{Role: "user", Content: "Plan three dinners. I have rice and eggs."},
				{Role: "tool", Content: `[{"note":"loved the curry"}]`, ToolName: "get_meal_notes"},
				{Role: "assistant", Content: testutil.ValidMealPlanJSON},
				{Role: "user", Content: "Something without eggs please"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaMessages(tt.input)

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, want %d", len(result), len(tt.expected))
			}

			for i, msg := range result {
				if msg.Role != tt.expected[i].Role {
					t.Errorf("message %d role: got %q, want %q", i, msg.Role, tt.expected[i].Role)
				}
				if msg.Content != tt.expected[i].Content {
					t.Errorf("message %d content: got %q, want %q", i, msg.Content, tt.expected[i].Content)
				}
				if msg.ToolName != tt.expected[i].ToolName {
					t.Errorf("message %d tool name: got %q, want %q", i, msg.ToolName, tt.expected[i].ToolName)
				}
			}
		})
	}
}

func TestConvertToolCalls(t *testing.T) {
	if got := ConvertToProviderToolCalls(nil); got != nil {
		t.Errorf("nil input: got %v, want nil", got)
	}
	if got := ConvertToProviderToolCalls([]api.ToolCall{}); got != nil {
		t.Errorf("empty input: got %v, want nil", got)
	}

	calls := []api.ToolCall{
		{Function: api.ToolCallFunction{Name: "get_meal_notes", Arguments: map[string]any{"n": float64(2)}}},
		{Function: api.ToolCallFunction{Name: "get_recent_requests"}},
	}
	got := ConvertToProviderToolCalls(calls)

	if len(got) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(got))
	}
	if got[0].Name != "get_meal_notes" || got[0].Arguments["n"] != float64(2) {
		t.Errorf("first call: got %+v", got[0])
	}
	if got[1].Name != "get_recent_requests" {
		t.Errorf("second call order: got %q", got[1].Name)
	}
}

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"object", `{"food":"kale","n":2}`, 2},
		{"empty string", "", 0},
		{"malformed", `{"food":`, 0},
		{"null", "null", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseToolArguments(tt.input)
			if got == nil {
				t.Fatal("expected non-nil map")
			}
			if len(got) != tt.want {
				t.Errorf("got %d keys, want %d", len(got), tt.want)
			}
		})
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	msgs := append([]model.Message{testutil.SystemMessage("be brief")}, testutil.TestMessages()...)
	result := ConvertToOpenAIMessages(msgs)

	if len(result) != len(msgs) {
		t.Fatalf("length mismatch: got %d, want %d", len(result), len(msgs))
	}
	if result[0].OfSystem == nil {
		t.Error("message 0: expected system message")
	}
	if result[1].OfUser == nil {
		t.Error("message 1: expected user message")
	}
	// Tool results are folded into user turns
	if result[2].OfUser == nil {
		t.Error("message 2: expected tool result as user message")
	}
	if result[3].OfAssistant == nil {
		t.Error("message 3: expected assistant message")
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	msgs := append([]model.Message{testutil.SystemMessage("be brief")}, testutil.TestMessages()...)
	converted, system := convertToAnthropicMessages(msgs)

	if len(system) != 1 || system[0].Text != "be brief" {
		t.Errorf("system blocks: got %+v", system)
	}
	if len(converted) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(converted))
	}

	wantRoles := []anthropic.MessageParamRole{
		anthropic.MessageParamRoleUser,
		anthropic.MessageParamRoleUser,
		anthropic.MessageParamRoleAssistant,
		anthropic.MessageParamRoleUser,
	}
	for i, m := range converted {
		if m.Role != wantRoles[i] {
			t.Errorf("message %d role: got %q, want %q", i, m.Role, wantRoles[i])
		}
	}
}

func TestToolResultText(t *testing.T) {
	got := toolResultText(model.ToolMessage("get_meal_notes", "[]"))
	if !strings.HasPrefix(got, "Result of tool get_meal_notes:") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "\n[]") {
		t.Errorf("unexpected suffix: %q", got)
	}
}

func TestBuildStructuredInstructions(t *testing.T) {
	schema, err := model.MealPlanSchema()
	if err != nil {
		t.Fatalf("MealPlanSchema() error = %v", err)
	}

	got := buildStructuredInstructions(schema)
	if !strings.Contains(got, "JSON") {
		t.Errorf("instructions do not mention JSON: %q", got)
	}

	last := got[strings.LastIndex(got, "\n")+1:]
	if !json.Valid([]byte(last)) {
		t.Errorf("schema line is not valid json: %q", last)
	}
	if strings.Contains(last, "\n") {
		t.Error("schema should be compacted to one line")
	}
}

func TestToolInstructionsListTools(t *testing.T) {
	tools := testutil.TestMCPTools()
	for name, build := range map[string]func() string{
		"anthropic": func() string { return buildAnthropicToolInstructions(tools) },
		"openai":    func() string { return buildOpenAIToolInstructions(tools) },
	} {
		t.Run(name, func(t *testing.T) {
			got := build()
			if !strings.HasPrefix(got, "TOOLS: get_meal_notes, get_food_details") {
				t.Errorf("unexpected header: %q", got)
			}
		})
	}
}
