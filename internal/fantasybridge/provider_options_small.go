//go:build toolpilot_small

package fantasybridge

import "charm.land/fantasy"

// Small builds only link the OpenAI-compatible provider.
func setUser(opts fantasy.ProviderOptions, _, user string) {
	setCompatUser(opts, user)
}
