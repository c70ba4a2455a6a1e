// Package stream defines the streaming client contract the agent drives.
package stream

import (
	"context"
	"errors"

	"github.com/dotcommander/toolpilot/internal/proto"
)

// ErrNoContent is returned by Stream.Current when the last part carried no
// assistant text.
var ErrNoContent = errors.New("no content")

// ErrNoToolCaller is reported for tool calls on a request without a caller.
var ErrNoToolCaller = errors.New("no tool caller configured")

// Client starts streams.
type Client interface {
	Request(ctx context.Context, request proto.Request) Stream
}

// Stream is a multi-step completion.
//
// Next advances within the current step and returns false when the step ends
// or fails. CallTools runs the tool calls collected during the step and
// appends their results to the conversation; a following Next starts the
// next step.
type Stream interface {
	Next() bool
	Current() (proto.Chunk, error)
	Err() error
	Close() error
	Messages() []proto.Message
	CallTools() []proto.ToolCallStatus
	DrainWarnings() []string
}

// CallTool runs one tool call through caller and returns the tool message to
// append to the conversation plus its status.
func CallTool(id, name string, data []byte, caller proto.ToolCaller) (proto.Message, proto.ToolCallStatus) {
	var (
		content string
		err     error
	)
	if caller == nil {
		err = ErrNoToolCaller
	} else {
		content, err = caller(name, data)
	}
	if err != nil {
		content = err.Error()
	}
	return proto.Message{
			Role:    proto.RoleTool,
			Content: content,
			ToolCalls: []proto.ToolCall{{
				ID:       id,
				IsError:  err != nil,
				Function: proto.Function{Name: name, Arguments: data},
			}},
		}, proto.ToolCallStatus{
			Name: name,
			Err:  err,
		}
}
