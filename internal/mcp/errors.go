package mcp

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned when a session or one of its tools is used
	// after Close.
	ErrSessionClosed = errors.New("mcp session is closed")
	// ErrUnknownTool is returned when a tool is not in the server catalog.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrAlreadyOpen is returned when a toolbox already holds a session for a
	// server name.
	ErrAlreadyOpen = errors.New("session already open")

	errEmptyCommand = errors.New("command is empty")
)

// LaunchError reports that the server executable could not be started.
type LaunchError struct {
	Server  string
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("mcp: could not launch %q (%s): %v", e.Server, e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ProtocolError reports a failed or timed out exchange with a running server.
type ProtocolError struct {
	Server string
	Op     string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mcp: %s on %q: %v", e.Op, e.Server, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ToolError is a tool result flagged with isError by the server.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool %s failed", e.Tool)
	}
	return e.Message
}
