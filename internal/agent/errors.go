package agent

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"charm.land/fantasy"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
)

// StreamErrorAction is the response to a failed model step: either give up
// with Err, or retry with Prompt and, when set, ModelOverride.
type StreamErrorAction struct {
	Retry         bool
	Prompt        string
	ModelOverride string
	Err           errs.Error
}

// ActionForStreamError classifies a provider error.
func (s *Service) ActionForStreamError(err error, mod config.ModelConfig, prompt string) StreamErrorAction {
	var perr *fantasy.ProviderError
	if !errors.As(err, &perr) {
		return giveUp(err, fmt.Sprintf("There was a problem with the %s API request.", mod.API))
	}

	switch {
	case perr.StatusCode == http.StatusNotFound && mod.Fallback == "":
		return giveUp(perr, fmt.Sprintf("Missing model '%s' for API '%s'.", mod.Model, mod.API))
	case perr.StatusCode == http.StatusNotFound:
		action := retry(perr, statusTitle(perr, mod.API+" API server error."), prompt)
		action.ModelOverride = mod.Fallback
		return action
	case perr.StatusCode == http.StatusBadRequest && contextLengthExceeded(perr):
		return retry(perr, "Maximum prompt size exceeded.", trimPrompt(perr.Error(), prompt))
	case perr.StatusCode != http.StatusBadRequest && perr.IsRetryable():
		return retry(perr, statusTitle(perr, "Retryable API error."), prompt)
	default:
		return giveUp(perr, statusTitle(perr, mod.API+" API request error."))
	}
}

func giveUp(err error, reason string) StreamErrorAction {
	return StreamErrorAction{Err: errs.Error{Err: err, Reason: reason}}
}

func retry(err error, reason, prompt string) StreamErrorAction {
	return StreamErrorAction{Retry: true, Prompt: prompt, Err: errs.Error{Err: err, Reason: reason}}
}

func statusTitle(err *fantasy.ProviderError, fallback string) string {
	if title := fantasy.ErrorTitleForStatusCode(err.StatusCode); title != "" {
		return title
	}
	return fallback
}

const contextLengthCode = "context_length_exceeded"

func contextLengthExceeded(err *fantasy.ProviderError) bool {
	for _, text := range []string{err.Message, string(err.ResponseBody)} {
		if strings.Contains(strings.ToLower(text), contextLengthCode) {
			return true
		}
	}
	return false
}

var tokenLimitRe = regexp.MustCompile(`maximum context length is (\d+) tokens. However, your messages resulted in (\d+) tokens`)

// trimPrompt shortens prompt by the token overflow reported in msg, at
// roughly four characters per token plus a small margin. The prompt is
// returned unchanged when msg carries no usable numbers.
func trimPrompt(msg, prompt string) string {
	m := tokenLimitRe.FindStringSubmatch(msg)
	if m == nil {
		return prompt
	}
	limit, err1 := strconv.Atoi(m[1])
	used, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || used <= limit {
		return prompt
	}
	cut := 10 + (used-limit)*4 //nolint:mnd
	if cut >= len(prompt) {
		return prompt
	}
	return prompt[:len(prompt)-cut]
}
