package cmd

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dotcommander/toolpilot/internal/errs"
	"github.com/dotcommander/toolpilot/internal/present"
)

// flagParseError is a pflag parse error with a friendlier message. format
// has one %s verb for the offending flag.
type flagParseError struct {
	err    error
	format string
	flag   string
}

func (f flagParseError) Error() string { return f.err.Error() }

func (f flagParseError) Unwrap() error { return f.err }

var invalidArgumentRe = regexp.MustCompile(`^invalid argument ".*" for "(.*)" flag: `)

// lastField returns the flag pflag names at the end of its message, as in
// "flag needs an argument: 'm' in -m".
func lastField(msg string) string {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

var flagErrorRules = []struct {
	prefix string
	format string
	flag   func(msg string) string
}{
	{"flag needs an argument:", "Flag %s needs an argument.", lastField},
	{"unknown flag:", "Flag %s is missing.", lastField},
	{"unknown shorthand flag:", "Short flag %s is missing.", lastField},
	{"invalid argument", "Flag %s has an invalid argument.", func(msg string) string {
		if m := invalidArgumentRe.FindStringSubmatch(msg); m != nil {
			return m[1]
		}
		return ""
	}},
}

func newFlagParseError(err error) flagParseError {
	msg := err.Error()
	for _, rule := range flagErrorRules {
		if strings.HasPrefix(msg, rule.prefix) {
			return flagParseError{err: err, format: rule.format, flag: rule.flag(msg)}
		}
	}
	return flagParseError{err: err, format: "%s", flag: msg}
}

// handleError prints err to w: flag errors with a pointer to the help,
// errs.Error values as reason and details, anything else as details.
func handleError(w io.Writer, err error) {
	styles := present.StderrStyles()

	var ferr flagParseError
	if errors.As(err, &ferr) {
		printf(w, "\nCheck out %s %s\n\n%s\n\n",
			styles.InlineCode.Render(progName+" -h"),
			styles.Comment.Render("for help."),
			fmt.Sprintf(ferr.format, styles.InlineCode.Render(ferr.flag)),
		)
		return
	}

	details := styles.ErrPadding.Render(styles.ErrorDetails.Render(err.Error()))
	if reason := errs.Reason(err, ""); reason != "" {
		printf(w, "\n%s\n\n%s\n\n", styles.ErrPadding.Render(styles.ErrorHeader.String(), reason), details)
		return
	}
	printf(w, "\n%s\n\n", details)
}
