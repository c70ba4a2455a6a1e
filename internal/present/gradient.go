package present

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	gradientFrom, _ = colorful.Hex("#F967DC")
	gradientTo, _   = colorful.Hex("#6B50FF")
)

// GradientRamp blends n colors from pink to purple.
func GradientRamp(n int) []lipgloss.Color {
	ramp := make([]lipgloss.Color, n)
	for i := range ramp {
		ramp[i] = lipgloss.Color(gradientFrom.BlendLuv(gradientTo, float64(i)/float64(n)).Hex())
	}
	return ramp
}

// GradientText colors each rune of s along the ramp. Strings shorter than
// three runes are returned as is.
func GradientText(base lipgloss.Style, s string) string {
	runes := []rune(s)
	if len(runes) < 3 { //nolint:mnd
		return s
	}
	var b strings.Builder
	for i, c := range GradientRamp(len(runes)) {
		b.WriteString(base.Foreground(c).Render(string(runes[i])))
	}
	return b.String()
}
