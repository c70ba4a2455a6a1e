//go:build windows

package mcp

import "os/exec"

func terminate(cmd *exec.Cmd) func() error {
	return func() error {
		return cmd.Process.Kill()
	}
}
