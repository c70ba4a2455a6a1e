package cmd

import (
	"maps"
	"math/rand/v2"
	"regexp"
	"slices"

	"github.com/dotcommander/toolpilot/internal/present"
)

var examples = map[string]string{
	"Ask the default PubMed server a question":  `toolpilot "What does the literature say about melatonin and jet lag?"`,
	"Use a bigger model with a larger context":  `toolpilot -m qwen2.5-coder:14b --context-window 16384 "Summarize recent caffeine studies"`,
	"Run without tools and keep the output raw": `toolpilot --mcp-disable '*' -r "Explain MCP in one paragraph" | tee answer.txt`,
}

func randomExample() string {
	keys := slices.Sorted(maps.Keys(examples))
	return keys[rand.IntN(len(keys))] //nolint:gosec
}

var (
	quoteRe = regexp.MustCompile(`"([^"\\]|\\.)*"`)
	pipeRe  = regexp.MustCompile(`\|`)
)

func cheapHighlighting(s present.Styles, code string) string {
	code = quoteRe.ReplaceAllStringFunc(code, func(x string) string {
		return s.Quote.Render(x)
	})
	return pipeRe.ReplaceAllStringFunc(code, func(x string) string {
		return s.Pipe.Render(x)
	})
}
