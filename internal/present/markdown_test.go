package present

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Remedies\n\n```\nwater\tsleep\n```\n", 80)
	require.NoError(t, err)
	require.Contains(t, out, "Remedies")
	require.True(t, strings.HasSuffix(out, "\n"))
	require.False(t, strings.HasSuffix(out, "\n\n"))
	require.NotContains(t, out, "\t")
}

func TestGradientRamp(t *testing.T) {
	ramp := GradientRamp(4)
	require.Len(t, ramp, 4)
	require.Regexp(t, `^#[0-9a-f]{6}$`, string(ramp[0]))
	require.NotEqual(t, ramp[0], ramp[3])
}

func TestGradientText(t *testing.T) {
	r := lipgloss.NewRenderer(&strings.Builder{})
	r.SetColorProfile(termenv.Ascii)
	base := r.NewStyle()

	require.Equal(t, "ok", GradientText(base, "ok"))
	require.Equal(t, "toolpilot", GradientText(base, "toolpilot"))
	require.Equal(t, "héllo", GradientText(base, "héllo"))
}
