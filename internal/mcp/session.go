// Package mcp runs stdio MCP servers as owned subprocesses and exposes their
// tools.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

var logger = xlog.NewPackageLogger("github.com/dotcommander/toolpilot/internal", "mcp")

// Session defaults.
const (
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultCallTimeout      = time.Minute
	DefaultGracePeriod      = 5 * time.Second
)

type options struct {
	handshakeTimeout time.Duration
	callTimeout      time.Duration
	gracePeriod      time.Duration
	clientName       string
	clientVersion    string
	onClose          func(server string, err error)
	spawned          func(*exec.Cmd)
}

// Option configures a Session.
type Option func(*options)

// WithHandshakeTimeout bounds initialize and tools/list.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.handshakeTimeout = d
		}
	}
}

// WithCallTimeout bounds a single tools/call exchange.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithGracePeriod sets how long the server may take to exit after the
// shutdown signal before it is killed.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.gracePeriod = d
		}
	}
}

// WithClientInfo sets the implementation reported in the handshake.
func WithClientInfo(name, version string) Option {
	return func(o *options) {
		o.clientName = name
		o.clientVersion = version
	}
}

// OnClose registers a callback invoked once when a session is closed.
func OnClose(fn func(server string, err error)) Option {
	return func(o *options) {
		o.onClose = fn
	}
}

// Session is a running MCP server subprocess and its tool catalog.
type Session struct {
	spec   LaunchSpec
	opts   options
	tr     *transport.Stdio
	cli    *client.Client
	cmd    *exec.Cmd
	cancel context.CancelFunc
	info   mcp.Implementation
	tools  []Tool
	closed atomic.Bool
}

// Open starts the server, performs the MCP handshake and lists its tools.
//
// It fails with *LaunchError when the executable cannot be started and with
// *ProtocolError when the handshake fails or times out. The process is
// terminated before either error is returned.
func Open(ctx context.Context, spec LaunchSpec, opts ...Option) (*Session, error) {
	o := options{
		handshakeTimeout: DefaultHandshakeTimeout,
		callTimeout:      DefaultCallTimeout,
		gracePeriod:      DefaultGracePeriod,
		clientName:       "toolpilot",
		clientVersion:    "dev",
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := spec.Validate(); err != nil {
		return nil, &LaunchError{Server: spec.Name, Command: spec.CommandLine(), Err: err}
	}

	// the process lives until Close, not until ctx is done
	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{spec: spec, opts: o, cancel: cancel}
	s.tr = transport.NewStdioWithOptions(
		spec.Command,
		spec.Environ(),
		spec.Args,
		transport.WithCommandFunc(s.command),
		transport.WithCommandLogger(transportLogger{server: spec.Name}),
	)
	if err := s.tr.Start(procCtx); err != nil {
		cancel()
		return nil, &LaunchError{Server: spec.Name, Command: spec.CommandLine(), Err: err}
	}
	if s.opts.spawned != nil {
		s.opts.spawned(s.cmd)
	}
	go s.drain(s.tr.Stderr())

	s.cli = client.NewClient(s.tr)
	if err := s.cli.Start(procCtx); err != nil {
		_ = s.shutdown()
		return nil, &ProtocolError{Server: spec.Name, Op: "start", Err: err}
	}

	hctx, hcancel := context.WithTimeout(ctx, o.handshakeTimeout)
	defer hcancel()
	if err := s.handshake(hctx); err != nil {
		_ = s.shutdown()
		return nil, err
	}

	logger.KV(xlog.DEBUG,
		"status", "open",
		"server", spec.Name,
		"pid", s.cmd.Process.Pid,
		"server_info", s.info.Name+" "+s.info.Version,
		"tools", len(s.tools))
	return s, nil
}

// With opens a session, runs fn and always closes the session, whether fn
// returns, fails or panics. A close error is joined with fn's error.
func With(ctx context.Context, spec LaunchSpec, fn func(context.Context, *Session) error, opts ...Option) (err error) {
	s, err := Open(ctx, spec, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(ctx, s)
}

func (s *Session) command(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if cmd.Err != nil {
		return nil, cmd.Err
	}
	cmd.Env = env
	cmd.Cancel = terminate(cmd)
	cmd.WaitDelay = s.opts.gracePeriod
	s.cmd = cmd
	return cmd, nil
}

func (s *Session) handshake(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    s.opts.clientName,
		Version: s.opts.clientVersion,
	}
	res, err := s.cli.Initialize(ctx, req)
	if err != nil {
		return s.protocolError(ctx, "initialize", err)
	}
	s.info = res.ServerInfo

	if res.Capabilities.Tools == nil {
		return nil
	}
	list, err := s.cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return s.protocolError(ctx, "tools/list", err)
	}
	s.tools = make([]Tool, 0, len(list.Tools))
	for _, t := range list.Tools {
		s.tools = append(s.tools, Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
			def:         t,
			session:     s,
		})
	}
	return nil
}

func (s *Session) protocolError(ctx context.Context, op string, err error) error {
	if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
		err = fmt.Errorf("%w: %w", cerr, err)
	}
	return &ProtocolError{Server: s.spec.Name, Op: op, Err: err}
}

func (s *Session) drain(r io.Reader) {
	if r == nil {
		return
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		logger.KV(xlog.DEBUG, "server", s.spec.Name, "stderr", sc.Text())
	}
}

// Name returns the server name of the launch spec.
func (s *Session) Name() string { return s.spec.Name }

// ServerInfo returns the implementation the server reported.
func (s *Session) ServerInfo() mcp.Implementation { return s.info }

// PID returns the server process id.
func (s *Session) PID() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed.Load() }

// Tools returns the tools listed during the handshake.
func (s *Session) Tools() []Tool {
	return slices.Clone(s.tools)
}

// Definitions returns the raw MCP tool definitions.
func (s *Session) Definitions() []mcp.Tool {
	defs := make([]mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, t.def)
	}
	return defs
}

// Tool returns the named tool.
func (s *Session) Tool(name string) (Tool, bool) {
	i := slices.IndexFunc(s.tools, func(t Tool) bool { return t.Name == name })
	if i < 0 {
		return Tool{}, false
	}
	return s.tools[i], true
}

// CallTool executes one tools/call exchange and returns the text result.
//
// data holds the JSON arguments object and may be empty.
func (s *Session) CallTool(ctx context.Context, name string, data []byte) (string, error) {
	if s.closed.Load() {
		return "", &ProtocolError{Server: s.spec.Name, Op: "tools/call", Err: ErrSessionClosed}
	}
	if _, ok := s.Tool(name); !ok {
		return "", fmt.Errorf("%w: %s_%s", ErrUnknownTool, s.spec.Name, name)
	}

	var args map[string]any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &args); err != nil {
			return "", fmt.Errorf("mcp: invalid arguments for %s: %w: %s", name, err, string(data))
		}
	}

	cctx, cancel := context.WithTimeout(ctx, s.opts.callTimeout)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := s.cli.CallTool(cctx, req)
	if err != nil {
		if s.closed.Load() {
			err = ErrSessionClosed
		}
		return "", s.protocolError(cctx, "tools/call", err)
	}

	text := textContent(res.Content)
	if res.IsError {
		return "", &ToolError{Tool: name, Message: text}
	}
	return text, nil
}

func textContent(content []mcp.Content) string {
	var sb strings.Builder
	for _, c := range content {
		switch c := c.(type) {
		case mcp.TextContent:
			sb.WriteString(c.Text)
		default:
			sb.WriteString("[Non-text content]")
		}
	}
	return sb.String()
}

// Close terminates the server. The second and later calls return nil.
//
// The server gets SIGTERM (a kill on windows), its stdin is closed and it
// is killed when it has not exited within the grace period.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.shutdown()
	logger.KV(xlog.DEBUG, "status", "closed", "server", s.spec.Name, "err", err)
	if s.opts.onClose != nil {
		s.opts.onClose(s.spec.Name, err)
	}
	return err
}

func (s *Session) shutdown() error {
	s.closed.Store(true)
	s.cancel()
	if err := s.tr.Close(); !expectedExit(err) {
		return &ProtocolError{Server: s.spec.Name, Op: "close", Err: err}
	}
	return nil
}

// expectedExit reports whether a Wait error is the result of the shutdown
// sequence itself.
func expectedExit(err error) bool {
	var exitErr *exec.ExitError
	return err == nil ||
		errors.As(err, &exitErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, exec.ErrWaitDelay) ||
		errors.Is(err, os.ErrClosed)
}

// Tool is a tool listed by a session. It is only usable while the session
// is open.
type Tool struct {
	Name        string
	Description string
	InputSchema mcp.ToolInputSchema

	def     mcp.Tool
	session *Session
}

// Call invokes the tool on its session.
func (t Tool) Call(ctx context.Context, data []byte) (string, error) {
	if t.session == nil {
		return "", &ProtocolError{Op: "tools/call", Err: ErrSessionClosed}
	}
	return t.session.CallTool(ctx, t.Name, data)
}

// Server returns the name of the server the tool belongs to.
func (t Tool) Server() string {
	if t.session == nil {
		return ""
	}
	return t.session.spec.Name
}

// Definition returns the raw MCP tool definition.
func (t Tool) Definition() mcp.Tool { return t.def }

type transportLogger struct {
	server string
}

func (l transportLogger) Infof(format string, v ...any) {
	logger.KV(xlog.DEBUG, "server", l.server, "transport", fmt.Sprintf(format, v...))
}

func (l transportLogger) Errorf(format string, v ...any) {
	logger.KV(xlog.ERROR, "server", l.server, "transport", fmt.Sprintf(format, v...))
}
