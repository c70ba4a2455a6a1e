// Package main provides the toolpilot CLI.
package main

import (
	"os"

	"github.com/dotcommander/toolpilot/internal/cmd"
	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
)

// Set with -ldflags "-X main.Version=... -X main.CommitSHA=...".
var (
	Version   string //nolint:gochecknoglobals
	CommitSHA string //nolint:gochecknoglobals
)

func main() {
	cfg, cfgErr := config.Ensure()
	if cfgErr == nil {
		if err := config.SetupLogging(os.Stderr, cfg.LogLevel); err != nil {
			cfgErr = errs.Wrap(err, "Invalid log level.")
		}
	}
	os.Exit(cmd.Execute(cmd.BuildInfo{Version: Version, CommitSHA: CommitSHA}, cfg, cfgErr))
}
