package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultAction = "WROTE"

// PrintConfirmation prints a short action header plus content, e.g. the path
// of a settings file that was just written.
func PrintConfirmation(w io.Writer, r *lipgloss.Renderer, action, content string) {
	if action == "" {
		action = defaultAction
	}
	header := r.NewStyle().
		Foreground(lipgloss.Color("#F1F1F1")).
		Background(lipgloss.Color("#6C50FF")).
		Bold(true).
		Padding(0, 1).
		MarginRight(1).
		SetString(strings.ToUpper(action))
	_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Center, header.String(), content))
}
