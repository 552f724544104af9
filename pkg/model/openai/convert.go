package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"

	modelpkg "github.com/angilabs/angi/pkg/model"
)

func convertMessages(messages []modelpkg.Message) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	if len(messages) == 0 {
		return []openaisdk.ChatCompletionMessageParamUnion{buildUserMessage("")}, nil
	}
	params := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for idx, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case modelpkg.RoleSystem:
			params = append(params, buildSystemMessage(msg.Content))
		case modelpkg.RoleAssistant:
			union, err := buildAssistantMessage(msg)
			if err != nil {
				return nil, fmt.Errorf("messages[%d]: %w", idx, err)
			}
			params = append(params, union)
		case modelpkg.RoleTool:
			union, err := buildToolMessage(msg)
			if err != nil {
				return nil, fmt.Errorf("messages[%d]: %w", idx, err)
			}
			params = append(params, union)
		default:
			params = append(params, buildUserMessage(msg.Content))
		}
	}
	return params, nil
}

func buildSystemMessage(content string) openaisdk.ChatCompletionMessageParamUnion {
	msg := openaisdk.ChatCompletionSystemMessageParam{}
	msg.Content.OfString = openaisdk.String(content)
	return openaisdk.ChatCompletionMessageParamUnion{OfSystem: &msg}
}

func buildUserMessage(content string) openaisdk.ChatCompletionMessageParamUnion {
	msg := openaisdk.ChatCompletionUserMessageParam{}
	msg.Content.OfString = openaisdk.String(content)
	return openaisdk.ChatCompletionMessageParamUnion{OfUser: &msg}
}

func buildAssistantMessage(msg modelpkg.Message) (openaisdk.ChatCompletionMessageParamUnion, error) {
	asst := openaisdk.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		asst.Content.OfString = openaisdk.String(msg.Content)
	}
	for idx, call := range msg.ToolCalls {
		name := strings.TrimSpace(call.Name)
		if name == "" {
			return openaisdk.ChatCompletionMessageParamUnion{}, fmt.Errorf("tool_calls[%d]: missing name", idx)
		}
		asst.ToolCalls = append(asst.ToolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      name,
					Arguments: encodeArguments(call.Arguments),
				},
			},
		})
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &asst}, nil
}

func buildToolMessage(msg modelpkg.Message) (openaisdk.ChatCompletionMessageParamUnion, error) {
	for _, call := range msg.ToolCalls {
		if id := strings.TrimSpace(call.ID); id != "" {
			return openaisdk.ToolMessage(msg.Content, id), nil
		}
	}
	return openaisdk.ChatCompletionMessageParamUnion{}, fmt.Errorf("tool message missing tool_call_id")
}

func convertTools(tools []map[string]any) ([]openaisdk.ChatCompletionToolUnionParam, error) {
	out := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(tools))
	for idx, tool := range tools {
		fn, _ := tool["function"].(map[string]any)
		if len(fn) == 0 {
			return nil, fmt.Errorf("tools[%d]: missing function definition", idx)
		}
		name, _ := fn["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("tools[%d]: missing function name", idx)
		}
		def := openaisdk.FunctionDefinitionParam{Name: name}
		if desc, _ := fn["description"].(string); strings.TrimSpace(desc) != "" {
			def.Description = openaisdk.String(desc)
		}
		if params, _ := fn["parameters"].(map[string]any); len(params) > 0 {
			def.Parameters = openaisdk.FunctionParameters(params)
		}
		out = append(out, openaisdk.ChatCompletionToolUnionParam{
			OfFunction: &openaisdk.ChatCompletionFunctionToolParam{Function: def},
		})
	}
	return out, nil
}

func convertResponseMessage(msg openaisdk.ChatCompletionMessage) (modelpkg.Message, error) {
	role := strings.TrimSpace(string(msg.Role))
	if role == "" {
		role = modelpkg.RoleAssistant
	}
	content := msg.Content
	if content == "" && strings.TrimSpace(msg.Refusal) != "" {
		content = msg.Refusal
	}
	result := modelpkg.Message{Role: role, Content: content}

	for idx, call := range msg.ToolCalls {
		fn := call.AsFunction()
		if strings.TrimSpace(fn.Function.Name) == "" {
			continue
		}
		args, err := decodeArguments(fn.Function.Arguments)
		if err != nil {
			return modelpkg.Message{}, fmt.Errorf("tool_calls[%d]: %w", idx, err)
		}
		result.ToolCalls = append(result.ToolCalls, modelpkg.ToolCall{
			ID:        fn.ID,
			Name:      fn.Function.Name,
			Arguments: args,
		})
	}
	return result, nil
}

func encodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}
