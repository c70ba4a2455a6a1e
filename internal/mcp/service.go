package mcp

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/caarlos0/go-shellwords"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
)

// Service turns the configured MCP servers into launch specs and session
// options.
type Service struct {
	cfg *config.Config
}

// New creates a new MCP service.
func New(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// IsEnabled reports whether the named MCP server is enabled.
func (s *Service) IsEnabled(name string) bool {
	if slices.Contains(s.cfg.MCPDisable, "*") || slices.Contains(s.cfg.MCPDisable, name) {
		return false
	}
	server, ok := s.cfg.MCPServers[name]
	return ok && !server.Disabled
}

// EnabledServers iterates enabled MCP servers in stable order.
func (s *Service) EnabledServers() iter.Seq2[string, config.MCPServerConfig] {
	return func(yield func(string, config.MCPServerConfig) bool) {
		for _, name := range slices.Sorted(maps.Keys(s.cfg.MCPServers)) {
			if !s.IsEnabled(name) {
				continue
			}
			if !yield(name, s.cfg.MCPServers[name]) {
				return
			}
		}
	}
}

// Spec builds the launch spec of a configured server.
//
// A command containing spaces and no args is split like a shell would.
func (s *Service) Spec(name string, server config.MCPServerConfig) (LaunchSpec, error) {
	command, args := server.Command, server.Args
	if len(args) == 0 && strings.ContainsAny(strings.TrimSpace(command), " \t") {
		words, err := shellwords.Parse(command)
		if err != nil {
			return LaunchSpec{}, fmt.Errorf("server %q: parse command: %w", name, err)
		}
		if len(words) > 0 {
			command, args = words[0], words[1:]
		}
	}

	env, err := ParseEnv(server.Env)
	if err != nil {
		return LaunchSpec{}, fmt.Errorf("server %q: %w", name, err)
	}

	inherit := !s.cfg.MCPNoInheritEnv
	if server.InheritEnv != nil {
		inherit = *server.InheritEnv
	}

	spec := LaunchSpec{
		Name:       name,
		Command:    command,
		Args:       slices.Clone(args),
		Env:        env,
		InheritEnv: inherit,
	}
	return spec, spec.Validate()
}

// Specs returns the launch specs of every enabled server.
func (s *Service) Specs() ([]LaunchSpec, error) {
	var specs []LaunchSpec
	for name, server := range s.EnabledServers() {
		spec, err := s.Spec(name, server)
		if err != nil {
			return nil, errs.Wrap(err, "Invalid MCP server configuration.")
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Options returns session options derived from the settings.
func (s *Service) Options(extra ...Option) []Option {
	opts := []Option{
		WithHandshakeTimeout(s.cfg.MCPTimeout),
		WithCallTimeout(s.cfg.MCPCallTimeout),
		WithGracePeriod(s.cfg.MCPGracePeriod),
	}
	return append(opts, extra...)
}

// Tools starts every enabled server, lists its tools and stops it again.
// Tools are grouped by server name.
func (s *Service) Tools(ctx context.Context) (map[string][]mcp.Tool, error) {
	specs, err := s.Specs()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var wg errgroup.Group
	result := map[string][]mcp.Tool{}
	for _, spec := range specs {
		wg.Go(func() error {
			var serverTools []mcp.Tool
			err := With(ctx, spec, func(_ context.Context, sess *Session) error {
				serverTools = sess.Definitions()
				return nil
			}, s.Options()...)
			var perr *ProtocolError
			if errors.As(err, &perr) && errors.Is(err, context.DeadlineExceeded) {
				return errs.Wrap(
					fmt.Errorf("timeout while listing tools for %q - make sure the configuration is correct and the command starts a stdio MCP server", spec.Name),
					"Could not list tools.",
				)
			}
			if err != nil {
				return errs.Wrap(err, "Could not list tools.")
			}
			mu.Lock()
			result[spec.Name] = serverTools
			mu.Unlock()
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, fmt.Errorf("mcp tools: %w", err)
	}
	return result, nil
}
