//go:build !windows

package mcp

import (
	"os/exec"
	"syscall"
)

func terminate(cmd *exec.Cmd) func() error {
	return func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
}
