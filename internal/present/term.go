package present

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// terminal pairs a renderer with the styles built on it.
type terminal struct {
	renderer *lipgloss.Renderer
	styles   Styles
}

func newTerminal(r *lipgloss.Renderer) terminal {
	return terminal{renderer: r, styles: MakeStyles(r)}
}

var (
	stdout = sync.OnceValue(func() terminal {
		return newTerminal(lipgloss.DefaultRenderer())
	})
	stderr = sync.OnceValue(func() terminal {
		return newTerminal(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))
	})
	stdoutTTY = sync.OnceValue(func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	})
)

// IsOutputTTY reports whether stdout is a terminal.
func IsOutputTTY() bool { return stdoutTTY() }

// StdoutRenderer is the shared stdout renderer.
func StdoutRenderer() *lipgloss.Renderer { return stdout().renderer }

// StdoutStyles are the shared stdout styles.
func StdoutStyles() Styles { return stdout().styles }

// StderrRenderer is the shared stderr renderer.
func StderrRenderer() *lipgloss.Renderer { return stderr().renderer }

// StderrStyles are the shared stderr styles.
func StderrStyles() Styles { return stderr().styles }
