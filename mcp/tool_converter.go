// Package mcp converts tool descriptors, expressed as MCP tool definitions,
// into the request formats each model provider expects.
package mcp

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"mealplan/config"
)

// parameterSchema returns the JSON Schema object for a tool's arguments.
// A raw schema, when the tool was built with one, takes precedence.
func parameterSchema(tool mcptypes.Tool) map[string]any {
	if len(tool.RawInputSchema) > 0 {
		var raw map[string]any
		if err := json.Unmarshal(tool.RawInputSchema, &raw); err == nil {
			if _, ok := raw["type"]; !ok {
				raw["type"] = "object"
			}
			return raw
		} else if config.DebugLog != nil {
			config.DebugLog.Printf("[mcp] ignoring invalid raw schema for %s: %v", tool.Name, err)
		}
	}

	in := tool.InputSchema
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
	if in.Type != "" {
		schema["type"] = in.Type
	}
	if in.Properties != nil {
		schema["properties"] = in.Properties
	}
	if len(in.Required) > 0 {
		schema["required"] = in.Required
	}
	if in.Defs != nil {
		schema["$defs"] = in.Defs
	}
	return schema
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// ToOllama converts tools to Ollama's function format. The parameter schema
// is decoded into Ollama's own types, so multi-type, enum, items and anyOf
// properties carry over as written.
func ToOllama(tools []mcptypes.Tool) []api.Tool {
	out := make([]api.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  ollamaParameters(tool),
			},
		})
	}
	return out
}

func ollamaParameters(tool mcptypes.Tool) api.ToolFunctionParameters {
	params := api.ToolFunctionParameters{}

	data, err := json.Marshal(parameterSchema(tool))
	if err == nil {
		err = json.Unmarshal(data, &params)
	}
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[mcp] advertising %s without parameters: %v", tool.Name, err)
		}
		params = api.ToolFunctionParameters{}
	}

	if params.Type == "" {
		params.Type = "object"
	}
	if params.Properties == nil {
		params.Properties = map[string]api.ToolProperty{}
	}
	return params
}

// ToOpenAI converts tools to chat completion function tools; nil for none
func ToOpenAI(tools []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  openai.FunctionParameters(parameterSchema(tool)),
		}))
	}
	return out
}

// ToAnthropic converts tools to Anthropic tool definitions; nil for none.
// Anthropic fixes the schema type to "object", so only the remaining keys move.
func ToAnthropic(tools []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schema := parameterSchema(tool)

		input := anthropic.ToolInputSchemaParam{Properties: schema["properties"]}
		input.Required = stringSlice(schema["required"])

		extra := map[string]any{}
		for key, value := range schema {
			switch key {
			case "type", "properties", "required":
			default:
				extra[key] = value
			}
		}
		if len(extra) > 0 {
			input.ExtraFields = extra
		}

		param := anthropic.ToolUnionParamOfTool(input, tool.Name)
		if tool.Description != "" {
			param.OfTool.Description = anthropic.String(tool.Description)
		}
		out = append(out, param)
	}
	return out
}

// Names returns the tool names in advertisement order
func Names(tools []mcptypes.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	return names
}
