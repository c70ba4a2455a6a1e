package fantasybridge

import (
	"fmt"
	"net/http"

	"charm.land/fantasy"
)

// providerOptions wires the optional settings of Config into the option list
// of one fantasy provider package and builds the provider. baseURL is nil for
// providers with a fixed endpoint.
func providerOptions[O any](
	cfg Config,
	name string,
	opts []O,
	baseURL func(string) O,
	httpClient func(*http.Client) O,
	build func(...O) (fantasy.Provider, error),
) (fantasy.Provider, error) {
	if baseURL != nil && cfg.BaseURL != "" {
		opts = append(opts, baseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, httpClient(cfg.HTTPClient))
	}
	provider, err := build(opts...)
	if err != nil {
		return nil, fmt.Errorf("new fantasy %s provider: %w", name, err)
	}
	return provider, nil
}
