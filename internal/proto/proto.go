// Package proto holds the provider-neutral request and message types passed
// between the agent and the model bridge.
package proto

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Function is the function a tool call targets.
type Function struct {
	Name      string
	Arguments []byte
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID       string
	IsError  bool
	Function Function
}

// ToolCallStatus reports the outcome of one executed tool call.
type ToolCallStatus struct {
	Name string
	Err  error
}

func (s ToolCallStatus) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %v", s.Name, s.Err)
	}
	return s.Name + ": ok"
}

// Message is one entry of a conversation.
type Message struct {
	Role      string
	Content   string
	ToolCalls []ToolCall
}

// Chunk is a streamed piece of assistant text.
type Chunk struct {
	Content string
}

// ToolCaller executes the named tool with JSON-encoded arguments.
type ToolCaller func(name string, data []byte) (string, error)

// Request is a model request.
type Request struct {
	Messages    []Message
	API         string
	Model       string
	User        string
	Temperature *float64
	TopP        *float64
	TopK        *int64
	MaxTokens   *int64

	// Tools are grouped by MCP server name.
	Tools      map[string][]mcp.Tool
	ToolCaller ToolCaller
}

// Conversation is a list of messages.
type Conversation []Message

func (c Conversation) String() string {
	var sb strings.Builder
	for _, msg := range c {
		if msg.Content == "" && len(msg.ToolCalls) == 0 {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			sb.WriteString("**System**: ")
		case RoleUser:
			sb.WriteString("**Prompt**: ")
		case RoleAssistant:
			sb.WriteString("**Assistant**: ")
		case RoleTool:
			sb.WriteString("**Tool**: ")
		}
		sb.WriteString(msg.Content)
		for _, call := range msg.ToolCalls {
			if msg.Role != RoleAssistant {
				continue
			}
			fmt.Fprintf(&sb, "\n> %s(%s)", call.Function.Name, string(call.Function.Arguments))
		}
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()) + "\n"
}
