package fantasybridge

import (
	"net/http"

	"charm.land/fantasy"
	fopenaicompat "charm.land/fantasy/providers/openaicompat"
)

// newCompatProvider serves Ollama and every other OpenAI-compatible API.
func newCompatProvider(cfg Config) (fantasy.Provider, error) {
	opts := []fopenaicompat.Option{fopenaicompat.WithName(cfg.API)}
	if cfg.APIKey != "" {
		opts = append(opts, fopenaicompat.WithAPIKey(cfg.APIKey))
	}
	return providerOptions(cfg, "openai-compatible", opts,
		func(u string) fopenaicompat.Option { return fopenaicompat.WithBaseURL(u) },
		func(c *http.Client) fopenaicompat.Option { return fopenaicompat.WithHTTPClient(c) },
		func(o ...fopenaicompat.Option) (fantasy.Provider, error) { return fopenaicompat.New(o...) },
	)
}
