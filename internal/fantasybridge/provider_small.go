//go:build toolpilot_small

package fantasybridge

import "charm.land/fantasy"

// newProvider links only the OpenAI-compatible provider, which is all Ollama
// needs.
func newProvider(cfg Config) (fantasy.Provider, error) {
	return newCompatProvider(cfg)
}
