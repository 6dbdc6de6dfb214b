package provider

import (
	"encoding/json"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealplan/mcp"
)

// buildAnthropicToolInstructions creates minimal tool instructions for Claude models.
// Claude follows the tool schema well but tends to narrate before calling.
func buildAnthropicToolInstructions(tools []mcptypes.Tool) string {
	return strings.Join([]string{
		"TOOLS: " + strings.Join(mcp.Names(tools), ", "),
		"",
		"Before proposing meals, gather what you need:",
		"1. Decide which tools would tell you about the user's tastes",
		"2. Call them IMMEDIATELY without explanation",
		"3. Once you have enough context, answer without further tool calls",
		"",
		"DO NOT:",
		"- List available tools",
		"- Explain what you're about to do",
		"- Call the same tool twice with the same arguments",
	}, "\n")
}

// buildOpenAIToolInstructions creates tool instructions for OpenAI models.
// GPT models prefer brief, direct guidance.
func buildOpenAIToolInstructions(tools []mcptypes.Tool) string {
	return strings.Join([]string{
		"TOOLS: " + strings.Join(mcp.Names(tools), ", "),
		"",
		"Use the tools to learn about past meals and feedback before planning.",
		"Call tools without commentary. Stop calling tools once you have enough context.",
	}, "\n")
}

// buildStructuredInstructions asks for a reply matching schema on backends
// without a native response format option.
func buildStructuredInstructions(schema json.RawMessage) string {
	compact := string(schema)
	var v any
	if err := json.Unmarshal(schema, &v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			compact = string(b)
		}
	}

	return strings.Join([]string{
		"Respond with a single JSON object and nothing else.",
		"No prose, no markdown code fences.",
		"The object must validate against this JSON schema:",
		compact,
	}, "\n")
}
