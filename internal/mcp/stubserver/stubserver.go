// Package stubserver turns a test binary into a small stdio MCP server.
//
// A test's TestMain calls MaybeServe first; when the binary is re-executed
// with EnvMode set it serves MCP on stdin/stdout and exits instead of
// running the tests.
package stubserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// EnvMode selects the stub behavior in the child process.
const EnvMode = "TOOLPILOT_STUB_SERVER"

// Modes understood by MaybeServe.
const (
	// Tools serves echo, fail, image, env and slow tools.
	Tools = "tools"
	// Empty serves no tools and does not advertise the tools capability.
	Empty = "empty"
	// Hang starts but never answers the handshake.
	Hang = "hang"
	// Stubborn serves tools, ignores SIGTERM and keeps running after stdin
	// closes.
	Stubborn = "stubborn"
	// Crash exits right away with status 3.
	Crash = "crash"
)

// Command returns the command line that re-executes the current binary.
func Command() (string, []string) {
	return os.Args[0], []string{"-test.run=^$"}
}

// Env returns the environment overrides selecting mode.
func Env(mode string) map[string]string {
	return map[string]string{EnvMode: mode}
}

// MaybeServe serves MCP and exits when EnvMode is set. It returns
// immediately otherwise.
func MaybeServe() {
	mode := os.Getenv(EnvMode)
	if mode == "" {
		return
	}
	os.Exit(serve(mode))
}

func serve(mode string) int {
	switch mode {
	case Tools:
		if err := server.ServeStdio(newToolServer()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case Empty:
		if err := server.ServeStdio(server.NewMCPServer("stub-empty", "1.0.0")); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case Hang:
		fmt.Fprintln(os.Stderr, "hanging")
		sleepForever()
	case Stubborn:
		// stderr is gone once the parent closes its pipes
		signal.Ignore(syscall.SIGTERM, syscall.SIGPIPE)
		_ = server.NewStdioServer(newToolServer()).Listen(context.Background(), os.Stdin, os.Stdout)
		fmt.Fprintln(os.Stderr, "stdin closed, staying alive")
		sleepForever()
	case Crash:
		fmt.Fprintln(os.Stderr, "crashing")
		return 3
	}
	fmt.Fprintf(os.Stderr, "unknown stub mode %q\n", mode)
	return 2
}

func sleepForever() {
	for {
		time.Sleep(time.Hour)
	}
}

func newToolServer() *server.MCPServer {
	srv := server.NewMCPServer("stub", "1.0.0", server.WithToolCapabilities(false))
	srv.AddTool(
		mcp.NewTool("echo",
			mcp.WithDescription("Echo the text back."),
			mcp.WithString("text", mcp.Required(), mcp.Description("text to echo")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(req.GetString("text", "")), nil
		},
	)
	srv.AddTool(
		mcp.NewTool("fail", mcp.WithDescription("Always fails.")),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("boom"), nil
		},
	)
	srv.AddTool(
		mcp.NewTool("image", mcp.WithDescription("Returns an image.")),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultImage("a dot", "iVBORw0KGgo=", "image/png"), nil
		},
	)
	srv.AddTool(
		mcp.NewTool("env",
			mcp.WithDescription("Returns an environment variable."),
			mcp.WithString("name", mcp.Required()),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			v, ok := os.LookupEnv(req.GetString("name", ""))
			if !ok {
				return mcp.NewToolResultText("<unset>"), nil
			}
			return mcp.NewToolResultText(v), nil
		},
	)
	srv.AddTool(
		mcp.NewTool("slow",
			mcp.WithDescription("Sleeps before answering."),
			mcp.WithNumber("ms", mcp.Required()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			select {
			case <-time.After(time.Duration(req.GetInt("ms", 0)) * time.Millisecond):
				return mcp.NewToolResultText("done"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	)
	return srv
}
