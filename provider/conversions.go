package provider

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"mealplan/model"
)

// ConvertToOllamaMessages converts transcript messages to Ollama api.Message.
// Ollama has a native tool role, so tool results keep their tool name.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:     string(msg.Role),
			Content:  msg.Content,
			ToolName: msg.ToolName,
		}
	}
	return result
}

// ConvertToProviderToolCalls converts Ollama api.ToolCall to provider-agnostic model.ToolCall.
// Returns nil if the input is nil or empty.
func ConvertToProviderToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}

// ParseToolArguments parses JSON arguments string into a map.
// Used by the OpenAI provider, which streams arguments as text.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil || args == nil {
		return make(map[string]any)
	}
	return args
}

// toolResultText renders a tool message for backends where a tool result
// must reference a call id the transcript does not keep.
func toolResultText(msg model.Message) string {
	return fmt.Sprintf("Result of tool %s:\n%s", msg.ToolName, msg.Content)
}

// ConvertToOpenAIMessages converts transcript messages to OpenAI format.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		case model.RoleTool:
			result[i] = openai.UserMessage(toolResultText(msg))
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}

// convertToAnthropicMessages converts transcript messages to Anthropic format.
// Returns the message array and any system prompt found.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			// Anthropic uses a separate system parameter, not in messages array
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})

		case model.RoleAssistant:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
			)

		case model.RoleTool:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(toolResultText(msg))),
			)

		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}

// extractToolCalls extracts tool calls from Anthropic message content.
func extractToolCalls(content []anthropic.ContentBlockUnion) []model.ToolCall {
	var toolCalls []model.ToolCall

	for _, block := range content {
		if toolUse, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			var args map[string]any
			if err := json.Unmarshal(toolUse.Input, &args); err != nil {
				continue
			}

			toolCalls = append(toolCalls, model.ToolCall{
				Name:      toolUse.Name,
				Arguments: args,
			})
		}
	}

	return toolCalls
}
