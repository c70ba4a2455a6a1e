// Package fantasybridge drives charm.land/fantasy providers behind the
// stream.Client interface.
package fantasybridge

import (
	"errors"
	"maps"
	"slices"

	"charm.land/fantasy"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dotcommander/toolpilot/internal/proto"
)

var fantasyRoles = map[string]fantasy.MessageRole{
	proto.RoleSystem: fantasy.MessageRoleSystem,
	proto.RoleUser:   fantasy.MessageRoleUser,
}

func toFantasyPrompt(input []proto.Message) fantasy.Prompt {
	messages := make([]fantasy.Message, 0, len(input))
	add := func(role fantasy.MessageRole, parts []fantasy.MessagePart) {
		if len(parts) > 0 {
			messages = append(messages, fantasy.Message{Role: role, Content: parts})
		}
	}
	for _, msg := range input {
		switch msg.Role {
		case proto.RoleSystem, proto.RoleUser:
			add(fantasyRoles[msg.Role], []fantasy.MessagePart{fantasy.TextPart{Text: msg.Content}})
		case proto.RoleAssistant:
			add(fantasy.MessageRoleAssistant, assistantParts(msg))
		case proto.RoleTool:
			add(fantasy.MessageRoleTool, toolResultParts(msg))
		}
	}
	return messages
}

func assistantParts(msg proto.Message) []fantasy.MessagePart {
	parts := make([]fantasy.MessagePart, 0, 1+len(msg.ToolCalls))
	if msg.Content != "" {
		parts = append(parts, fantasy.TextPart{Text: msg.Content})
	}
	for _, call := range msg.ToolCalls {
		parts = append(parts, fantasy.ToolCallPart{
			ToolCallID: call.ID,
			ToolName:   call.Function.Name,
			Input:      string(call.Function.Arguments),
		})
	}
	return parts
}

// toolResultParts answers every call of a tool message with its content; a
// failed call is reported to the model as an error result.
func toolResultParts(msg proto.Message) []fantasy.MessagePart {
	parts := make([]fantasy.MessagePart, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		var output fantasy.ToolResultOutputContent = fantasy.ToolResultOutputContentText{Text: msg.Content}
		if call.IsError {
			output = fantasy.ToolResultOutputContentError{Error: errors.New(msg.Content)}
		}
		parts = append(parts, fantasy.ToolResultPart{ToolCallID: call.ID, Output: output})
	}
	return parts
}

// fromMCPTools exposes MCP tools as function tools named "<server>_<tool>",
// ordered by server and then by the server's own listing order.
func fromMCPTools(servers map[string][]mcp.Tool) []fantasy.Tool {
	tools := make([]fantasy.Tool, 0)
	for _, server := range slices.Sorted(maps.Keys(servers)) {
		for _, tool := range servers[server] {
			tools = append(tools, fantasy.FunctionTool{
				Name:        server + "_" + tool.Name,
				Description: tool.Description,
				InputSchema: inputSchema(tool.InputSchema),
			})
		}
	}
	return tools
}

func inputSchema(schema mcp.ToolInputSchema) map[string]any {
	out := map[string]any{
		"type":       "object",
		"properties": schema.Properties,
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}

func toolChoiceForRequest(request proto.Request) *fantasy.ToolChoice {
	if len(request.Tools) == 0 {
		return nil
	}
	choice := fantasy.ToolChoiceAuto
	return &choice
}
