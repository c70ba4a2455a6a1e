package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
	"github.com/dotcommander/toolpilot/internal/present"
)

// The config commands work even when the settings file failed to parse, so
// a broken file can still be fixed or replaced.
func newConfigCmd(rt *app) *cobra.Command {
	edit := func(cmd *cobra.Command, _ []string) error {
		return editSettings(cmd.ErrOrStderr(), rt.cfg.SettingsPath)
	}
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage settings",
		RunE:  edit,
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "edit",
			Short: "Open settings in $EDITOR",
			Args:  cobra.NoArgs,
			RunE:  edit,
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset settings to defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return resetSettings(cmd.ErrOrStderr(), rt.cfg.SettingsPath)
			},
		},
		&cobra.Command{
			Use:   "dirs",
			Short: "Print the config directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				printf(cmd.OutOrStdout(), "%s\n", filepath.Dir(rt.cfg.SettingsPath))
				return nil
			},
		},
	)
	return configCmd
}

func editSettings(w io.Writer, path string) error {
	if err := config.WriteConfigFile(path); err != nil {
		return errs.Wrap(err, "Could not write your settings file.")
	}

	c, err := editor.Cmd(progName, path)
	if err != nil {
		return errs.Wrap(err, "Could not edit your settings file.")
	}
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return errs.Wrapf(err, "Missing %s.", present.StderrStyles().InlineCode.Render("$EDITOR"))
	}

	present.PrintConfirmation(w, present.StderrRenderer(), "wrote", path)
	return nil
}

// resetSettings moves the settings file aside to path.bak and writes the
// defaults in its place.
func resetSettings(w io.Writer, path string) error {
	backup := path + ".bak"
	err := os.Rename(path, backup)
	switch {
	case errors.Is(err, os.ErrNotExist):
		backup = ""
	case err != nil:
		return errs.Wrap(err, "Could not back up your settings file.")
	}
	if err := config.WriteConfigFile(path); err != nil {
		return errs.Wrap(err, "Could not write your settings file.")
	}

	r := present.StderrRenderer()
	present.PrintConfirmation(w, r, "reset", path)
	if backup != "" {
		present.PrintConfirmation(w, r, "saved", backup)
	}
	return nil
}
