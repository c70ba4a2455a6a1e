package cmd

import (
	"os"

	"github.com/dotcommander/toolpilot/internal/config"
)

// Execute runs the root command and returns the process exit code. Errors
// are printed to stderr.
func Execute(build BuildInfo, cfg config.Config, cfgErr error) int {
	defer writeMemProfiles()

	if err := NewRootCmd(build, cfg, cfgErr).Execute(); err != nil {
		handleError(os.Stderr, err)
		return 1
	}
	return 0
}
