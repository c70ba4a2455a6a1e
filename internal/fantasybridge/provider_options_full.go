//go:build !toolpilot_small

package fantasybridge

import (
	"charm.land/fantasy"
	fopenai "charm.land/fantasy/providers/openai"
)

func setUser(opts fantasy.ProviderOptions, api, user string) {
	switch api {
	case apiOpenAI, apiAzure, apiAzureAD:
		opts[fopenai.Name] = &fopenai.ProviderOptions{User: &user}
	case apiAnthropic, apiGoogle, apiOpenRouter, apiVercel, apiBedrock:
	default:
		setCompatUser(opts, user)
	}
}
