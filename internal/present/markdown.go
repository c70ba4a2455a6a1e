package present

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/glamour"
)

// tabs expands the tabs glamour leaves in code blocks.
var tabs = strings.NewReplacer("\t", "    ")

// RenderMarkdown renders md with the environment's glamour style, wrapped at
// wordWrap columns. The result ends with exactly one newline.
func RenderMarkdown(md string, wordWrap int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return tabs.Replace(strings.TrimRightFunc(out, unicode.IsSpace)) + "\n", nil
}
