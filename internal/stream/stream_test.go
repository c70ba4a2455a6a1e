package stream

import (
	"errors"
	"testing"

	"github.com/dotcommander/toolpilot/internal/proto"
	"github.com/stretchr/testify/require"
)

func TestCallTool(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotName string
		var gotData []byte
		msg, status := CallTool("call_1", "srv_echo", []byte(`{"text":"hi"}`), func(name string, data []byte) (string, error) {
			gotName, gotData = name, data
			return "hi", nil
		})
		require.Equal(t, "srv_echo", gotName)
		require.JSONEq(t, `{"text":"hi"}`, string(gotData))
		require.Equal(t, proto.RoleTool, msg.Role)
		require.Equal(t, "hi", msg.Content)
		require.Len(t, msg.ToolCalls, 1)
		require.Equal(t, "call_1", msg.ToolCalls[0].ID)
		require.False(t, msg.ToolCalls[0].IsError)
		require.NoError(t, status.Err)
	})

	t.Run("tool error becomes error result", func(t *testing.T) {
		boom := errors.New("boom")
		msg, status := CallTool("call_2", "srv_fail", nil, func(string, []byte) (string, error) {
			return "", boom
		})
		require.Equal(t, "boom", msg.Content)
		require.True(t, msg.ToolCalls[0].IsError)
		require.ErrorIs(t, status.Err, boom)
	})

	t.Run("missing caller", func(t *testing.T) {
		msg, status := CallTool("call_3", "srv_echo", nil, nil)
		require.ErrorIs(t, status.Err, ErrNoToolCaller)
		require.True(t, msg.ToolCalls[0].IsError)
	})
}
