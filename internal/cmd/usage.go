package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/dotcommander/toolpilot/internal/present"
)

func useLine(s present.Styles, appName string, gradient bool) string {
	if gradient {
		appName = present.GradientText(s.AppName, appName)
	}
	return fmt.Sprintf("%s %s", appName, s.CliArgs.Render("[OPTIONS] [QUERY]"))
}

func usageFunc(cmd *cobra.Command) error {
	gradient := present.StdoutRenderer().ColorProfile() == termenv.TrueColor
	writeUsage(cmd.OutOrStdout(), cmd, present.StdoutStyles(), filepath.Base(os.Args[0]), gradient)
	return nil
}

func writeUsage(w io.Writer, cmd *cobra.Command, s present.Styles, appName string, gradient bool) {
	printf(w, "Usage:\n  %s\n\n", useLine(s, appName, gradient))
	printf(w, "Options:\n")
	cmd.Flags().VisitAll(func(f *flag.Flag) {
		if f.Hidden {
			return
		}
		if f.Shorthand == "" {
			printf(w,
				"  %-44s %s\n",
				s.Flag.Render("--"+f.Name),
				s.FlagDesc.Render(f.Usage),
			)
			return
		}
		printf(w,
			"  %s%s %-40s %s\n",
			s.Flag.Render("-"+f.Shorthand),
			s.FlagComma,
			s.Flag.Render("--"+f.Name),
			s.FlagDesc.Render(f.Usage),
		)
	})
	if cmd.HasAvailableSubCommands() {
		printf(w, "\nCommands:\n")
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() {
				continue
			}
			printf(w, "  %-44s %s\n", s.Flag.Render(sub.Name()), s.FlagDesc.Render(sub.Short))
		}
	}
	if cmd.HasExample() {
		printf(w,
			"\nExample:\n  %s\n  %s\n",
			s.Comment.Render("# "+cmd.Example),
			cheapHighlighting(s, examples[cmd.Example]),
		)
	}
}
