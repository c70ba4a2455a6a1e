package cmd

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

const manConfiguration = "Settings are read from toolpilot.yml in the user config directory " +
	"and may be overridden with TOOLPILOT_* environment variables. " +
	"MCP servers are listed under mcp-servers; each is started with its command, " +
	"args and env, and closed when the run ends."

// manPage renders the roff man page of root, section 1.
func manPage(root *cobra.Command) (string, error) {
	page, err := mcobra.NewManPage(1, root)
	if err != nil {
		return "", fmt.Errorf("build man page: %w", err)
	}
	return page.WithSection("Configuration", manConfiguration).Build(roff.NewDocument()), nil
}

func newManCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:                   "man",
		Short:                 "Print the man page",
		Hidden:                true,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := manPage(root)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s", page)
			return nil
		},
	}
}
