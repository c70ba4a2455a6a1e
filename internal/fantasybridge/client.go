package fantasybridge

import (
	"context"
	"fmt"
	"net/http"

	"charm.land/fantasy"
	"github.com/effective-security/xlog"

	"github.com/dotcommander/toolpilot/internal/proto"
	"github.com/dotcommander/toolpilot/internal/stream"
)

var logger = xlog.NewPackageLogger("github.com/dotcommander/toolpilot/internal", "fantasybridge")

var _ stream.Client = &Client{}

const (
	apiOllama     = "ollama"
	apiAnthropic  = "anthropic"
	apiGoogle     = "google"
	apiOpenAI     = "openai"
	apiAzure      = "azure"
	apiAzureAD    = "azure-ad"
	apiOpenRouter = "openrouter"
	apiVercel     = "vercel"
	apiBedrock    = "bedrock"
)

// Config is the provider configuration of a Client.
type Config struct {
	API        string
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// ContextWindow is sent to Ollama as options.num_ctx.
	ContextWindow int64
}

// Client is a stream.Client backed by charm.land/fantasy.
type Client struct {
	provider fantasy.Provider
	config   Config
}

// New creates a fantasy backed client.
func New(cfg Config) (*Client, error) {
	if cfg.API == apiOllama && cfg.ContextWindow > 0 {
		cfg.HTTPClient = withNumCtx(cfg.HTTPClient, cfg.ContextWindow)
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{provider: provider, config: cfg}, nil
}

// Request implements stream.Client. The first step starts right away; a
// failure to start it is reported by the returned stream's Err.
func (c *Client) Request(ctx context.Context, request proto.Request) stream.Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		ctx:      ctx,
		cancel:   cancel,
		request:  request,
		api:      c.config.API,
		messages: request.Messages,
	}

	model, err := c.provider.LanguageModel(ctx, request.Model)
	if err != nil {
		s.err = fmt.Errorf("fantasy language model %q: %w", request.Model, err)
		return s
	}
	s.model = model
	s.err = s.begin()
	return s
}
