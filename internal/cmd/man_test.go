package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/toolpilot/internal/config"
)

func TestManPage(t *testing.T) {
	root := NewRootCmd(BuildInfo{Version: "v0.1.0"}, config.Default(), nil)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"man"})
	require.NoError(t, root.Execute())

	page := buf.String()
	require.Contains(t, page, ".TH")
	require.Contains(t, strings.ToUpper(page), "CONFIGURATION")
	require.Contains(t, page, "TOOLPILOT_")
	require.Contains(t, page, "timeout")
}
