package fantasybridge

import (
	"testing"

	"charm.land/fantasy"
	"github.com/stretchr/testify/require"
)

func TestTurnSkipsRepeatedAndProviderExecutedCalls(t *testing.T) {
	tr := newTurn()
	tr.add(searchCall("tc_1"))
	tr.add(searchCall("tc_1"))

	hosted := searchCall("tc_2")
	hosted.ProviderExecuted = true
	tr.add(hosted)

	require.Len(t, tr.calls, 1)
	require.Equal(t, "tc_1", tr.calls[0].ID)
}

func TestTurnMessageCopiesCalls(t *testing.T) {
	tr := newTurn()
	tr.add(searchCall("tc_1"))
	msg, ok := tr.message()
	require.True(t, ok)
	require.Empty(t, msg.Content)

	tr.calls[0].ID = "changed"
	require.Equal(t, "tc_1", msg.ToolCalls[0].ID)
}

func TestWarningText(t *testing.T) {
	for name, tc := range map[string]struct {
		in   fantasy.CallWarning
		want string
	}{
		"message": {fantasy.CallWarning{Message: " top_k ignored ", Details: "d"}, "top_k ignored"},
		"details": {fantasy.CallWarning{Details: "seed not supported"}, "seed not supported"},
		"setting": {fantasy.CallWarning{Setting: "topp"}, "unsupported setting: topp"},
		"empty":   {fantasy.CallWarning{}, "provider warning"},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, warningText(tc.in))
		})
	}
}
