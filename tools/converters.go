package tools

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// The catalog publishes its schemas as MCP Tool values; the converters below
// translate that one shape into each provider's function-declaration format.

// ToOllamaTools converts catalog schemas to the Ollama API tool format.
func ToOllamaTools(schemas []mcptypes.Tool) []api.Tool {
	ollamaTools := make([]api.Tool, 0, len(schemas))
	for _, schema := range schemas {
		ollamaTools = append(ollamaTools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        schema.Name,
				Description: schema.Description,
				Parameters:  schemaToOllamaParameters(schema.InputSchema),
			},
		})
	}
	return ollamaTools
}

func schemaToOllamaParameters(inputSchema mcptypes.ToolInputSchema) api.ToolFunctionParameters {
	params := api.ToolFunctionParameters{
		Type:       inputSchema.Type,
		Required:   inputSchema.Required,
		Properties: make(map[string]api.ToolProperty),
	}
	if inputSchema.Defs != nil {
		params.Defs = inputSchema.Defs
	}
	for name, value := range inputSchema.Properties {
		params.Properties[name] = toOllamaProperty(value)
	}
	return params
}

func toOllamaProperty(value any) api.ToolProperty {
	prop := api.ToolProperty{}

	propMap, ok := value.(map[string]any)
	if !ok {
		// Fall back to a marshal round trip for struct-shaped properties.
		data, err := json.Marshal(value)
		if err != nil {
			return prop
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return prop
		}
		propMap = m
	}

	if typeVal, ok := propMap["type"]; ok {
		switch t := typeVal.(type) {
		case string:
			prop.Type = api.PropertyType{t}
		case []string:
			prop.Type = api.PropertyType(t)
		case []any:
			types := make([]string, 0, len(t))
			for _, v := range t {
				if s, ok := v.(string); ok {
					types = append(types, s)
				}
			}
			prop.Type = api.PropertyType(types)
		}
	}
	if desc, ok := propMap["description"].(string); ok {
		prop.Description = desc
	}
	if enumVal, ok := propMap["enum"].([]any); ok {
		prop.Enum = enumVal
	}
	if items, ok := propMap["items"]; ok {
		prop.Items = items
	}
	if anyOf, ok := propMap["anyOf"].([]any); ok {
		props := make([]api.ToolProperty, 0, len(anyOf))
		for _, item := range anyOf {
			props = append(props, toOllamaProperty(item))
		}
		prop.AnyOf = props
	}
	return prop
}

// ToOpenAITools converts catalog schemas to the OpenAI chat-completions tool
// format. Both sides are JSON Schema; only the envelope differs.
func ToOpenAITools(schemas []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, len(schemas))
	for i, schema := range schemas {
		params := openai.FunctionParameters{
			"type":       schema.InputSchema.Type,
			"properties": schema.InputSchema.Properties,
		}
		if len(schema.InputSchema.Required) > 0 {
			params["required"] = schema.InputSchema.Required
		}
		if schema.InputSchema.Defs != nil {
			params["$defs"] = schema.InputSchema.Defs
		}

		result[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        schema.Name,
				Description: openai.String(schema.Description),
				Parameters:  params,
			},
		)
	}
	return result
}

// ToAnthropicTools converts catalog schemas to Anthropic tool params.
func ToAnthropicTools(schemas []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(schemas))
	for i, schema := range schemas {
		inputSchema := anthropic.ToolInputSchemaParam{
			// Type defaults to "object" when omitted.
			Properties: schema.InputSchema.Properties,
		}
		if len(schema.InputSchema.Required) > 0 {
			inputSchema.Required = schema.InputSchema.Required
		}
		if schema.InputSchema.Defs != nil {
			inputSchema.ExtraFields = map[string]any{
				"$defs": schema.InputSchema.Defs,
			}
		}

		result[i] = anthropic.ToolUnionParamOfTool(inputSchema, schema.Name)
		if schema.Description != "" {
			result[i].OfTool.Description = anthropic.String(schema.Description)
		}
	}
	return result
}
