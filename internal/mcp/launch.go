package mcp

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// LaunchSpec describes how to start a stdio MCP server.
type LaunchSpec struct {
	// Name identifies the server. Tool names are exposed as <name>_<tool>,
	// so it must not contain an underscore.
	Name    string
	Command string
	Args    []string
	// Env overrides the child environment. Override keys always win.
	Env map[string]string
	// InheritEnv passes the current process environment to the child.
	InheritEnv bool
}

// Validate reports launch specs that can never start.
func (s LaunchSpec) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return errors.New("server name is empty")
	case strings.Contains(s.Name, "_"):
		return fmt.Errorf("server name %q must not contain '_'", s.Name)
	case strings.TrimSpace(s.Command) == "":
		return fmt.Errorf("server %q: %w", s.Name, errEmptyCommand)
	}
	return nil
}

// Environ returns the merged child environment as sorted KEY=VALUE pairs.
func (s LaunchSpec) Environ() []string {
	env := map[string]string{}
	if s.InheritEnv {
		for _, kv := range os.Environ() {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				continue
			}
			env[k] = v
		}
	}
	maps.Copy(env, s.Env)

	keys := slices.Sorted(maps.Keys(env))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// CommandLine renders the command and its arguments for display.
func (s LaunchSpec) CommandLine() string {
	return strings.Join(append([]string{s.Command}, s.Args...), " ")
}

// ParseEnv converts KEY=VALUE pairs into an override map. Later pairs win.
func ParseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid environment entry %q, expected KEY=VALUE", kv)
		}
		env[k] = v
	}
	return env, nil
}
