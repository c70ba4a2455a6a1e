package fantasybridge

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/tidwall/sjson"
)

// numCtxTransport adds options.num_ctx to chat completion requests. The
// OpenAI-compatible request body has no field for Ollama's context size, and
// Ollama versions that ignore options on /v1 keep the server's own setting
// (OLLAMA_CONTEXT_LENGTH or the model's Modelfile num_ctx).
type numCtxTransport struct {
	base   http.RoundTripper
	numCtx int64
}

func withNumCtx(client *http.Client, numCtx int64) *http.Client {
	var c http.Client
	if client != nil {
		c = *client
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = &numCtxTransport{base: base, numCtx: numCtx}
	return &c
}

func (t *numCtxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil ||
		!strings.HasSuffix(req.URL.Path, "/chat/completions") {
		return t.base.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	patched, err := sjson.SetBytes(body, "options.num_ctx", t.numCtx)
	if err != nil {
		logger.KV(xlog.WARNING, "reason", "num_ctx", "err", err.Error())
		patched = body
	}

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(patched))
	clone.ContentLength = int64(len(patched))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(patched)), nil
	}
	return t.base.RoundTrip(clone)
}
