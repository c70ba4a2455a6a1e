//go:build !toolpilot_small

package fantasybridge

import (
	"testing"

	fopenai "charm.land/fantasy/providers/openai"
	fopenaicompat "charm.land/fantasy/providers/openaicompat"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/toolpilot/internal/proto"
)

func TestUserProviderOptions(t *testing.T) {
	for api, want := range map[string]string{
		apiOpenAI:    fopenai.Name,
		apiAzure:     fopenai.Name,
		apiAzureAD:   fopenai.Name,
		apiOllama:    fopenaicompat.Name,
		"deepseek":   fopenaicompat.Name,
		apiAnthropic: "",
		apiGoogle:    "",
		apiBedrock:   "",
	} {
		t.Run(api, func(t *testing.T) {
			call := (&Stream{api: api, request: proto.Request{User: "alice"}}).buildCall()
			if want == "" {
				require.Empty(t, call.ProviderOptions)
				return
			}
			require.Len(t, call.ProviderOptions, 1)
			switch opts := call.ProviderOptions[want].(type) {
			case *fopenai.ProviderOptions:
				require.Equal(t, "alice", *opts.User)
			case *fopenaicompat.ProviderOptions:
				require.Equal(t, "alice", *opts.User)
			default:
				t.Fatalf("unexpected options %T", opts)
			}
		})
	}
}

func TestUserProviderOptionsSkippedWithoutUser(t *testing.T) {
	call := (&Stream{api: apiOpenAI}).buildCall()
	require.Empty(t, call.ProviderOptions)
}

func TestNewAzureAD(t *testing.T) {
	client, err := New(Config{
		API:     apiAzureAD,
		APIKey:  "token",
		BaseURL: "https://example.openai.azure.com",
	})
	require.NoError(t, err)
	require.NotNil(t, client)
}
