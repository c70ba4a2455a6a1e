package agent

import (
	"context"
	"errors"
	"fmt"

	mmcp "github.com/mark3labs/mcp-go/mcp"
)

// Runner answers a single query. Run blocks until the final answer or an
// unrecoverable error.
type Runner interface {
	Run(ctx context.Context, query string) (string, error)
}

// Tools is the tool source a run may call, usually an *mcp.Toolbox.
type Tools interface {
	Tools() map[string][]mmcp.Tool
	CallTool(ctx context.Context, name string, data []byte) (string, error)
}

var (
	// ErrStepBudget is reported when the model keeps calling tools past the
	// configured number of steps.
	ErrStepBudget = errors.New("step budget exhausted")
	// ErrNoAnswer is reported when the final step carries no text.
	ErrNoAnswer = errors.New("model returned an empty answer")
)

// RunError is returned for every failed run.
type RunError struct {
	Steps int
	Err   error
}

func (e *RunError) Error() string {
	if e.Steps > 0 {
		return fmt.Sprintf("agent run failed after %d steps: %v", e.Steps, e.Err)
	}
	return fmt.Sprintf("agent run failed: %v", e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
