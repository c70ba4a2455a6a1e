package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSystemPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("plain text", func(t *testing.T) {
		msg, err := LoadSystemPrompt(ctx, "Answer briefly.")
		require.NoError(t, err)
		require.Equal(t, "Answer briefly.", msg)
	})

	t.Run("text file keeps dashes", func(t *testing.T) {
		path := writeTemp(t, "system.txt", "---\nnot front matter\n---\n")
		msg, err := LoadSystemPrompt(ctx, "file://"+path)
		require.NoError(t, err)
		require.Equal(t, "---\nnot front matter\n---\n", msg)
	})

	t.Run("markdown file", func(t *testing.T) {
		path := writeTemp(t, "system.md", "---\nname: pharmacist\n---\n\nCite PubMed ids.\n")
		msg, err := LoadSystemPrompt(ctx, "file://"+path)
		require.NoError(t, err)
		require.Equal(t, "Cite PubMed ids.\n", msg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSystemPrompt(ctx, "file://"+filepath.Join(t.TempDir(), "nope.md"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("remote prompt"))
		}))
		t.Cleanup(srv.Close)

		msg, err := LoadSystemPrompt(ctx, srv.URL)
		require.NoError(t, err)
		require.Equal(t, "remote prompt", msg)
	})

	t.Run("url not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		_, err := LoadSystemPrompt(ctx, srv.URL)
		require.ErrorContains(t, err, "HTTP 404: gone")
	})
}

func TestStripFrontMatter(t *testing.T) {
	for name, tc := range map[string]struct {
		in, want string
		err      string
	}{
		"no front matter":  {in: "body", want: "body"},
		"single line":      {in: "---", want: "---"},
		"empty block":      {in: "---\n---\nbody", want: "body"},
		"block":            {in: "---\na: 1\n---\nbody\n", want: "body\n"},
		"unterminated":     {in: "---\na: 1\nbody", err: "missing closing"},
		"invalid yaml":     {in: "---\na: [1\n---\nbody", err: "front matter"},
		"crlf after block": {in: "---\na: 1\n---\r\n\r\nbody", want: "body"},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := StripFrontMatter(tc.in)
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
