package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrapf(cause, "Could not start MCP server %q.", "pubmed")

	require.Equal(t, "exit status 1", err.Error())
	require.Equal(t, `Could not start MCP server "pubmed".`, err.Reason)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "Interrupted.", Error{Reason: "Interrupted."}.Error())
}

func TestReason(t *testing.T) {
	cause := errors.New("boom")
	for name, tc := range map[string]struct {
		err  error
		want string
	}{
		"plain":        {cause, "fallback"},
		"nil":          {nil, "fallback"},
		"direct":       {Wrap(cause, "Broke."), "Broke."},
		"wrapped":      {fmt.Errorf("run: %w", Wrap(cause, "Broke.")), "Broke."},
		"outer wins":   {Wrap(Wrap(cause, "Inner."), "Outer."), "Outer."},
		"empty reason": {Wrap(Wrap(cause, "Inner."), ""), "Inner."},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, Reason(tc.err, "fallback"))
		})
	}
}
