package fantasybridge

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNumCtxTransport(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if int64(len(body)) != r.ContentLength {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		got = append(got, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := withNumCtx(nil, 8192)

	resp, err := client.Post(srv.URL+"/v1/chat/completions", "application/json",
		strings.NewReader(`{"model":"qwen2.5-coder:7b","stream":true}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp, err = client.Post(srv.URL+"/v1/embeddings", "application/json",
		strings.NewReader(`{"model":"x"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	require.Len(t, got, 2)
	require.EqualValues(t, 8192, gjson.Get(got[0], "options.num_ctx").Int())
	require.Equal(t, "qwen2.5-coder:7b", gjson.Get(got[0], "model").String())
	require.True(t, gjson.Get(got[0], "stream").Bool())
	require.Equal(t, `{"model":"x"}`, got[1])
}

func TestWithNumCtxKeepsClientSettings(t *testing.T) {
	base := &http.Client{Timeout: 42}
	client := withNumCtx(base, 1024)
	require.NotSame(t, base, client)
	require.EqualValues(t, 42, client.Timeout)
	require.Nil(t, base.Transport)
	tr, ok := client.Transport.(*numCtxTransport)
	require.True(t, ok)
	require.Equal(t, http.DefaultTransport, tr.base)
}

func TestNewOllamaClientInjectsNumCtx(t *testing.T) {
	client, err := New(Config{API: "ollama", BaseURL: "http://127.0.0.1:11434/v1", APIKey: "ollama", ContextWindow: 8192})
	require.NoError(t, err)
	require.NotNil(t, client)
	require.NotNil(t, client.config.HTTPClient)
	_, ok := client.config.HTTPClient.Transport.(*numCtxTransport)
	require.True(t, ok)

	other, err := New(Config{API: "openai", APIKey: "k", ContextWindow: 8192})
	require.NoError(t, err)
	require.Nil(t, other.config.HTTPClient)
}
