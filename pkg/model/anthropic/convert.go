package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	modelpkg "github.com/angilabs/angi/pkg/model"
)

func convertMessages(messages []modelpkg.Message) ([]anthropicsdk.TextBlockParam, []anthropicsdk.MessageParam) {
	var systemBlocks []anthropicsdk.TextBlockParam
	messageParams := make([]anthropicsdk.MessageParam, 0, len(messages))

	for _, msg := range messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role == modelpkg.RoleSystem {
			if strings.TrimSpace(msg.Content) != "" {
				systemBlocks = append(systemBlocks, anthropicsdk.TextBlockParam{Text: msg.Content})
			}
			continue
		}

		blocks := buildContentBlocks(role, msg)
		if len(blocks) == 0 {
			blocks = []anthropicsdk.ContentBlockParamUnion{anthropicsdk.NewTextBlock(".")}
		}
		messageParams = append(messageParams, anthropicsdk.MessageParam{
			Role:    normalizeRole(role),
			Content: blocks,
		})
	}

	if len(messageParams) == 0 {
		messageParams = append(messageParams, anthropicsdk.MessageParam{
			Role:    anthropicsdk.MessageParamRoleUser,
			Content: []anthropicsdk.ContentBlockParamUnion{anthropicsdk.NewTextBlock("")},
		})
	}
	return systemBlocks, messageParams
}

func buildContentBlocks(role string, msg modelpkg.Message) []anthropicsdk.ContentBlockParamUnion {
	if role == modelpkg.RoleTool {
		if blocks := buildToolResultBlocks(msg); len(blocks) > 0 {
			return blocks
		}
	}

	var blocks []anthropicsdk.ContentBlockParamUnion
	if msg.Content != "" {
		blocks = append(blocks, anthropicsdk.NewTextBlock(msg.Content))
	}
	if role != modelpkg.RoleAssistant {
		return blocks
	}
	for _, call := range msg.ToolCalls {
		name := strings.TrimSpace(call.Name)
		id := strings.TrimSpace(call.ID)
		if name == "" || id == "" {
			continue
		}
		args := call.Arguments
		if args == nil {
			args = map[string]any{}
		}
		blocks = append(blocks, anthropicsdk.NewToolUseBlock(id, args, name))
	}
	return blocks
}

func buildToolResultBlocks(msg modelpkg.Message) []anthropicsdk.ContentBlockParamUnion {
	blocks := make([]anthropicsdk.ContentBlockParamUnion, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		id := strings.TrimSpace(call.ID)
		if id == "" {
			return nil
		}
		result := anthropicsdk.ToolResultBlockParam{
			ToolUseID: id,
			Content: []anthropicsdk.ToolResultBlockParamContentUnion{
				{OfText: &anthropicsdk.TextBlockParam{Text: msg.Content}},
			},
		}
		blocks = append(blocks, anthropicsdk.ContentBlockParamUnion{OfToolResult: &result})
	}
	return blocks
}

func convertTools(tools []map[string]any) ([]anthropicsdk.ToolUnionParam, error) {
	toolParams := make([]anthropicsdk.ToolUnionParam, 0, len(tools))
	for _, def := range tools {
		fn, _ := def["function"].(map[string]any)
		if len(fn) == 0 {
			continue
		}
		name, _ := fn["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		schema, err := convertParameters(fn["parameters"])
		if err != nil {
			return nil, fmt.Errorf("convert parameters for %s: %w", name, err)
		}
		tool := anthropicsdk.ToolParam{Name: name, InputSchema: schema}
		if desc, _ := fn["description"].(string); strings.TrimSpace(desc) != "" {
			tool.Description = anthropicsdk.String(desc)
		}
		toolParams = append(toolParams, anthropicsdk.ToolUnionParam{OfTool: &tool})
	}
	return toolParams, nil
}

func convertParameters(raw any) (anthropicsdk.ToolInputSchemaParam, error) {
	params, _ := raw.(map[string]any)
	if len(params) == 0 {
		return anthropicsdk.ToolInputSchemaParam{Type: "object"}, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return anthropicsdk.ToolInputSchemaParam{}, fmt.Errorf("marshal schema: %w", err)
	}
	var schema anthropicsdk.ToolInputSchemaParam
	if err := json.Unmarshal(data, &schema); err != nil {
		return anthropicsdk.ToolInputSchemaParam{}, fmt.Errorf("unmarshal schema: %w", err)
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema, nil
}

func convertResponseMessage(msg anthropicsdk.Message) modelpkg.Message {
	result := modelpkg.Message{Role: string(msg.Role)}
	var textParts []string

	for _, block := range msg.Content {
		switch content := block.AsAny().(type) {
		case anthropicsdk.TextBlock:
			textParts = append(textParts, content.Text)
		case anthropicsdk.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, modelpkg.ToolCall{
				ID:        content.ID,
				Name:      content.Name,
				Arguments: decodeToolInput(content.Input),
			})
		}
	}

	result.Content = strings.Join(textParts, "\n")
	if strings.TrimSpace(result.Role) == "" {
		result.Role = modelpkg.RoleAssistant
	}
	return result
}

func decodeToolInput(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": value}
}

func normalizeRole(role string) anthropicsdk.MessageParamRole {
	switch role {
	case modelpkg.RoleAssistant, "model":
		return anthropicsdk.MessageParamRoleAssistant
	default:
		return anthropicsdk.MessageParamRoleUser
	}
}
