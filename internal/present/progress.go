package present

import (
	"fmt"
	"io"
	"strings"
)

// RuleWidth is the width of the rule printed around the answer.
const RuleWidth = 60

// Progress prints the run's progress lines and the final answer.
//
// A zero Styles pointer prints plain text, which is what pipes and tests get.
type Progress struct {
	w        io.Writer
	styles   *Styles
	markdown bool
	wordWrap int
}

// ProgressOption configures a Progress.
type ProgressOption func(*Progress)

// WithStyles renders progress lines with s.
func WithStyles(s Styles) ProgressOption {
	return func(p *Progress) {
		p.styles = &s
	}
}

// WithMarkdown renders the answer as markdown wrapped at wordWrap columns.
func WithMarkdown(wordWrap int) ProgressOption {
	return func(p *Progress) {
		p.markdown = true
		p.wordWrap = wordWrap
	}
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer, opts ...ProgressOption) *Progress {
	p := &Progress{w: w}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Step prints one progress line.
func (p *Progress) Step(msg string) {
	if p.styles != nil {
		msg = p.styles.Step.Render(msg)
	}
	_, _ = fmt.Fprintln(p.w, msg)
}

// Rule prints a horizontal rule.
func (p *Progress) Rule() {
	rule := strings.Repeat("-", RuleWidth)
	if p.styles != nil {
		rule = p.styles.Rule.Render(rule)
	}
	_, _ = fmt.Fprintln(p.w, rule)
}

// Answer prints the answer between two rules.
func (p *Progress) Answer(answer string) {
	out := strings.TrimRight(answer, "\n") + "\n"
	if p.markdown {
		if rendered, err := RenderMarkdown(answer, p.wordWrap); err == nil {
			out = rendered
		}
	}
	p.Rule()
	_, _ = io.WriteString(p.w, out)
	p.Rule()
}

// Done prints the success line.
func (p *Progress) Done() {
	msg := "Agent completed successfully!"
	if p.styles != nil {
		msg = p.styles.Success.Render(msg)
	}
	_, _ = fmt.Fprintln(p.w, msg)
}
