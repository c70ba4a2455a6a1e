package cmd

import (
	"context"
	"io"
	"maps"
	"slices"
	"strings"

	mmcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/dotcommander/toolpilot/internal/config"
	imcp "github.com/dotcommander/toolpilot/internal/mcp"
	"github.com/dotcommander/toolpilot/internal/present"
)

func newMCPCmd(rt *app) *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server integration",
	}

	mcpCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured MCP servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			mcpList(cmd.OutOrStdout(), &rt.cfg)
			return nil
		},
	})

	mcpCmd.AddCommand(&cobra.Command{
		Use:   "tools",
		Short: "List tools from enabled MCP servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			return mcpListTools(cmd.Context(), cmd.OutOrStdout(), &rt.cfg)
		},
	})

	return mcpCmd
}

// mcpList prints every configured server with its command line and state,
// disabled ones included.
func mcpList(w io.Writer, cfg *config.Config) {
	svc := imcp.New(cfg)
	styles := present.StdoutStyles()
	for _, name := range slices.Sorted(maps.Keys(cfg.MCPServers)) {
		server := cfg.MCPServers[name]
		command := strings.Join(append([]string{server.Command}, server.Args...), " ")
		if spec, err := svc.Spec(name, server); err == nil {
			command = spec.CommandLine()
		}
		state := "disabled"
		if svc.IsEnabled(name) {
			state = "enabled"
		}
		printf(w, "%s %s %s\n", name, styles.Comment.Render(command), styles.Server.Render("("+state+")"))
	}
}

func mcpListTools(ctx context.Context, w io.Writer, cfg *config.Config) error {
	servers, err := imcp.New(cfg).Tools(ctx)
	if err != nil {
		return err
	}

	styles := present.StdoutStyles()
	for _, name := range slices.Sorted(maps.Keys(servers)) {
		tools := servers[name]
		slices.SortFunc(tools, func(a, b mmcp.Tool) int { return strings.Compare(a.Name, b.Name) })
		for _, tool := range tools {
			line := styles.Server.Render(name+" > ") + tool.Name
			if tool.Description != "" {
				line += " " + styles.Comment.Render(tool.Description)
			}
			printf(w, "%s\n", line)
		}
	}
	return nil
}
