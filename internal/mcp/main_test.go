package mcp

import (
	"os"
	"testing"

	"github.com/dotcommander/toolpilot/internal/mcp/stubserver"
)

func TestMain(m *testing.M) {
	stubserver.MaybeServe()
	os.Exit(m.Run())
}

func stubSpec(name, mode string) LaunchSpec {
	command, args := stubserver.Command()
	return LaunchSpec{
		Name:       name,
		Command:    command,
		Args:       args,
		Env:        stubserver.Env(mode),
		InheritEnv: true,
	}
}
