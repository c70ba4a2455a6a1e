package mcp

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/toolpilot/internal/mcp/stubserver"
)

func TestToolbox(t *testing.T) {
	ctx := context.Background()
	b := NewToolbox()
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.OpenAll(ctx, []LaunchSpec{
		stubSpec("alpha", stubserver.Tools),
		stubSpec("beta", stubserver.Empty),
	}))
	require.Equal(t, []string{"alpha", "beta"}, b.Names())
	require.Equal(t, 2, b.Len())

	tools := b.Tools()
	require.Len(t, tools["alpha"], 5)
	require.Empty(t, tools["beta"])

	out, err := b.CallTool(ctx, "alpha_echo", []byte(`{"text":"routed"}`))
	require.NoError(t, err)
	require.Equal(t, "routed", out)

	_, err = b.CallTool(ctx, "gamma_echo", nil)
	require.ErrorIs(t, err, ErrUnknownTool)

	_, err = b.CallTool(ctx, "noserver", nil)
	require.Error(t, err)

	_, err = b.Open(ctx, stubSpec("alpha", stubserver.Tools))
	require.ErrorIs(t, err, ErrAlreadyOpen)

	alpha, ok := b.Session("alpha")
	require.True(t, ok)
	require.NoError(t, b.Close())
	require.True(t, alpha.Closed())
	require.Zero(t, b.Len())

	_, err = b.CallTool(ctx, "alpha_echo", nil)
	require.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolboxReopenAfterClose(t *testing.T) {
	ctx := context.Background()
	b := NewToolbox()
	t.Cleanup(func() { _ = b.Close() })

	s, err := b.Open(ctx, stubSpec("alpha", stubserver.Empty))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = b.Open(ctx, stubSpec("alpha", stubserver.Empty))
	require.NoError(t, err)
}

func TestToolboxOpenAllFailureClosesEverything(t *testing.T) {
	var mu sync.Mutex
	closed := map[string]int{}
	b := NewToolbox(OnClose(func(name string, _ error) {
		mu.Lock()
		closed[name]++
		mu.Unlock()
	}))

	err := b.OpenAll(context.Background(), []LaunchSpec{
		stubSpec("alpha", stubserver.Tools),
		{Name: "ghost", Command: "toolpilot-definitely-not-installed"},
	})
	var lerr *LaunchError
	require.ErrorAs(t, err, &lerr)
	require.Zero(t, b.Len())

	mu.Lock()
	defer mu.Unlock()
	require.LessOrEqual(t, closed["alpha"], 1)
	require.Zero(t, closed["ghost"])
}

func TestWithToolbox(t *testing.T) {
	var closes atomic.Int32
	err := WithToolbox(context.Background(), []LaunchSpec{stubSpec("alpha", stubserver.Tools)},
		func(ctx context.Context, b *Toolbox) error {
			out, err := b.CallTool(ctx, "alpha_echo", []byte(`{"text":"hi"}`))
			require.NoError(t, err)
			require.Equal(t, "hi", out)
			return nil
		},
		OnClose(func(string, error) { closes.Add(1) }),
	)
	require.NoError(t, err)
	require.EqualValues(t, 1, closes.Load())
}
