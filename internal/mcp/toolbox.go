package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// Toolbox holds at most one open session per server name and routes tool
// calls named <server>_<tool>.
type Toolbox struct {
	opts []Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewToolbox returns an empty toolbox. opts apply to every session it opens.
func NewToolbox(opts ...Option) *Toolbox {
	return &Toolbox{
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// Open starts a session for spec. It fails with ErrAlreadyOpen when a
// session with the same name is open or opening.
func (b *Toolbox) Open(ctx context.Context, spec LaunchSpec) (*Session, error) {
	b.mu.Lock()
	if s, ok := b.sessions[spec.Name]; ok && (s == nil || !s.Closed()) {
		b.mu.Unlock()
		return nil, fmt.Errorf("mcp: %w: %q", ErrAlreadyOpen, spec.Name)
	}
	b.sessions[spec.Name] = nil
	b.mu.Unlock()

	s, err := Open(ctx, spec, b.opts...)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		delete(b.sessions, spec.Name)
		return nil, err
	}
	b.sessions[spec.Name] = s
	return s, nil
}

// OpenAll opens every spec concurrently. When any of them fails, the ones
// already open are closed and the first error is returned.
func (b *Toolbox) OpenAll(ctx context.Context, specs []LaunchSpec) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		g.Go(func() error {
			_, err := b.Open(gctx, spec)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Join(err, b.Close())
	}
	return nil
}

// Session returns the open session with the given name.
func (b *Toolbox) Session(name string) (*Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[name]
	if !ok || s == nil || s.Closed() {
		return nil, false
	}
	return s, true
}

// Names returns the names of the open sessions in sorted order.
func (b *Toolbox) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.sessions))
	for name, s := range b.sessions {
		if s != nil && !s.Closed() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Len returns the number of open sessions.
func (b *Toolbox) Len() int {
	return len(b.Names())
}

// Tools returns tool definitions grouped by server name.
func (b *Toolbox) Tools() map[string][]mcp.Tool {
	result := map[string][]mcp.Tool{}
	for _, name := range b.Names() {
		if s, ok := b.Session(name); ok {
			result[name] = s.Definitions()
		}
	}
	return result
}

// CallTool executes a tool call against the owning session.
// fullName must be of the form: <server>_<tool>.
func (b *Toolbox) CallTool(ctx context.Context, fullName string, data []byte) (string, error) {
	sname, tool, ok := strings.Cut(fullName, "_")
	if !ok {
		return "", fmt.Errorf("mcp: invalid tool name: %q", fullName)
	}
	s, ok := b.Session(sname)
	if !ok {
		return "", fmt.Errorf("mcp: %w: no open server %q", ErrUnknownTool, sname)
	}
	return s.CallTool(ctx, tool, data)
}

// Close closes every session and forgets them. Errors are joined.
func (b *Toolbox) Close() error {
	b.mu.Lock()
	sessions := make([]*Session, 0, len(b.sessions))
	for name, s := range b.sessions {
		if s != nil {
			sessions = append(sessions, s)
			delete(b.sessions, name)
		}
	}
	b.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, len(sessions))
	for i, s := range sessions {
		wg.Go(func() {
			errs[i] = s.Close()
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// WithToolbox opens every spec, runs fn and always closes the toolbox.
func WithToolbox(ctx context.Context, specs []LaunchSpec, fn func(context.Context, *Toolbox) error, opts ...Option) (err error) {
	b := NewToolbox(opts...)
	if err := b.OpenAll(ctx, specs); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, b.Close())
	}()
	return fn(ctx, b)
}
