package fantasybridge

import (
	"testing"

	"charm.land/fantasy"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/toolpilot/internal/proto"
)

func searchToolCall(id string, isError bool) proto.ToolCall {
	return proto.ToolCall{
		ID:      id,
		IsError: isError,
		Function: proto.Function{
			Name:      "pubmed_search_abstracts",
			Arguments: []byte(`{"query":"hangover"}`),
		},
	}
}

func TestToFantasyPromptRoles(t *testing.T) {
	prompt := toFantasyPrompt([]proto.Message{
		{Role: proto.RoleSystem, Content: "Cite sources."},
		{Role: proto.RoleUser, Content: "Please find a remedy for hangover."},
		{Role: proto.RoleAssistant, ToolCalls: []proto.ToolCall{searchToolCall("call_1", false)}},
		{Role: proto.RoleTool, Content: "three studies", ToolCalls: []proto.ToolCall{searchToolCall("call_1", false)}},
		{Role: proto.RoleAssistant, Content: "Drink water."},
	})

	roles := make([]fantasy.MessageRole, 0, len(prompt))
	for _, msg := range prompt {
		roles = append(roles, msg.Role)
	}
	require.Equal(t, []fantasy.MessageRole{
		fantasy.MessageRoleSystem,
		fantasy.MessageRoleUser,
		fantasy.MessageRoleAssistant,
		fantasy.MessageRoleTool,
		fantasy.MessageRoleAssistant,
	}, roles)
}

func TestToFantasyPromptSkipsEmptyMessages(t *testing.T) {
	prompt := toFantasyPrompt([]proto.Message{
		{Role: proto.RoleAssistant},
		{Role: proto.RoleTool, Content: "orphan"},
		{Role: "narrator", Content: "ignored"},
	})
	require.Empty(t, prompt)
}

func TestAssistantParts(t *testing.T) {
	parts := assistantParts(proto.Message{
		Content:   "Looking it up.",
		ToolCalls: []proto.ToolCall{searchToolCall("call_1", false)},
	})
	require.Len(t, parts, 2)

	text, ok := fantasy.AsMessagePart[fantasy.TextPart](parts[0])
	require.True(t, ok)
	require.Equal(t, "Looking it up.", text.Text)

	call, ok := fantasy.AsMessagePart[fantasy.ToolCallPart](parts[1])
	require.True(t, ok)
	require.Equal(t, "call_1", call.ToolCallID)
	require.Equal(t, "pubmed_search_abstracts", call.ToolName)
	require.JSONEq(t, `{"query":"hangover"}`, call.Input)
}

func TestToolResultParts(t *testing.T) {
	ok := toolResultParts(proto.Message{Content: "three studies", ToolCalls: []proto.ToolCall{searchToolCall("call_1", false)}})
	require.Len(t, ok, 1)
	result, isResult := fantasy.AsMessagePart[fantasy.ToolResultPart](ok[0])
	require.True(t, isResult)
	require.Equal(t, "call_1", result.ToolCallID)
	text, isText := fantasy.AsToolResultOutputType[fantasy.ToolResultOutputContentText](result.Output)
	require.True(t, isText)
	require.Equal(t, "three studies", text.Text)

	failed := toolResultParts(proto.Message{Content: "rate limited", ToolCalls: []proto.ToolCall{searchToolCall("call_2", true)}})
	result, isResult = fantasy.AsMessagePart[fantasy.ToolResultPart](failed[0])
	require.True(t, isResult)
	out, isErr := fantasy.AsToolResultOutputType[fantasy.ToolResultOutputContentError](result.Output)
	require.True(t, isErr)
	require.EqualError(t, out.Error, "rate limited")
}

func TestFromMCPTools(t *testing.T) {
	tools := fromMCPTools(map[string][]mcp.Tool{
		"pubmed": {
			{
				Name:        "search_abstracts",
				Description: "Search PubMed abstracts.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{"query": map[string]any{"type": "string"}},
					Required:   []string{"query"},
				},
			},
			{Name: "get_details"},
		},
		"fs": {{Name: "read"}},
	})

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		fn, ok := tool.(fantasy.FunctionTool)
		require.True(t, ok)
		names = append(names, fn.Name)
	}
	require.Equal(t, []string{"fs_read", "pubmed_search_abstracts", "pubmed_get_details"}, names)

	search := tools[1].(fantasy.FunctionTool)
	require.Equal(t, "Search PubMed abstracts.", search.Description)
	require.Equal(t, "object", search.InputSchema["type"])
	require.Equal(t, []string{"query"}, search.InputSchema["required"])

	_, hasRequired := tools[2].(fantasy.FunctionTool).InputSchema["required"]
	require.False(t, hasRequired)
}

func TestToolChoiceForRequest(t *testing.T) {
	require.Nil(t, toolChoiceForRequest(proto.Request{}))
	choice := toolChoiceForRequest(proto.Request{Tools: map[string][]mcp.Tool{"pubmed": nil}})
	require.NotNil(t, choice)
	require.Equal(t, fantasy.ToolChoiceAuto, *choice)
}
