package fantasybridge

import (
	"charm.land/fantasy"
	fopenaicompat "charm.land/fantasy/providers/openaicompat"

	"github.com/dotcommander/toolpilot/internal/proto"
)

// applyProviderOptions adds the per-API options of a request. Only the end
// user id is forwarded, to the APIs that accept one.
func applyProviderOptions(call *fantasy.Call, api string, req proto.Request) {
	if req.User != "" {
		setUser(call.ProviderOptions, api, req.User)
	}
}

func setCompatUser(opts fantasy.ProviderOptions, user string) {
	opts[fopenaicompat.Name] = &fopenaicompat.ProviderOptions{User: &user}
}
