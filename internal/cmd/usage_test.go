package cmd

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dotcommander/toolpilot/internal/present"
)

func plainStyles() present.Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return present.MakeStyles(r)
}

func TestUsage(t *testing.T) {
	noop := func(*cobra.Command, []string) {}
	cmd := &cobra.Command{
		Use:     "toolpilot",
		Example: "Ask the default PubMed server a question",
		Run:     noop,
	}
	cmd.Flags().StringP("model", "m", "", "Default model.")
	cmd.Flags().Bool("raw", false, "Print plain output, even on a TTY.")
	cmd.Flags().SortFlags = false
	cmd.AddCommand(&cobra.Command{Use: "mcp", Short: "MCP server integration", Run: noop})
	cmd.AddCommand(&cobra.Command{Use: "man", Short: "Generates the toolpilot manpage", Hidden: true, Run: noop})

	var buf bytes.Buffer
	writeUsage(&buf, cmd, plainStyles(), "toolpilot", false)
	golden.RequireEqual(t, buf.Bytes())
}
