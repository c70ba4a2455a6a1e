//go:build !toolpilot_small

package fantasybridge

import (
	"net/http"
	"strings"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/azure"
	"charm.land/fantasy/providers/bedrock"
	fgoogle "charm.land/fantasy/providers/google"
	fopenai "charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
	"charm.land/fantasy/providers/vercel"
)

func newProvider(cfg Config) (fantasy.Provider, error) {
	switch cfg.API {
	case apiOpenAI:
		return providerOptions(cfg, "openai",
			[]fopenai.Option{fopenai.WithAPIKey(cfg.APIKey)},
			func(u string) fopenai.Option { return fopenai.WithBaseURL(u) },
			func(c *http.Client) fopenai.Option { return fopenai.WithHTTPClient(c) },
			func(o ...fopenai.Option) (fantasy.Provider, error) { return fopenai.New(o...) },
		)
	case apiAnthropic:
		return providerOptions(cfg, "anthropic",
			[]anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)},
			func(u string) anthropic.Option { return anthropic.WithBaseURL(strings.TrimSuffix(u, "/v1")) },
			func(c *http.Client) anthropic.Option { return anthropic.WithHTTPClient(c) },
			func(o ...anthropic.Option) (fantasy.Provider, error) { return anthropic.New(o...) },
		)
	case apiGoogle:
		return providerOptions(cfg, "google",
			[]fgoogle.Option{fgoogle.WithGeminiAPIKey(cfg.APIKey)},
			func(u string) fgoogle.Option { return fgoogle.WithBaseURL(u) },
			func(c *http.Client) fgoogle.Option { return fgoogle.WithHTTPClient(c) },
			func(o ...fgoogle.Option) (fantasy.Provider, error) { return fgoogle.New(o...) },
		)
	case apiAzure, apiAzureAD:
		// the deployment URL is mandatory for azure, so it is always passed
		return providerOptions(cfg, "azure",
			[]azure.Option{azure.WithAPIKey(cfg.APIKey), azure.WithBaseURL(cfg.BaseURL)},
			nil,
			func(c *http.Client) azure.Option { return azure.WithHTTPClient(c) },
			func(o ...azure.Option) (fantasy.Provider, error) { return azure.New(o...) },
		)
	case apiOpenRouter:
		return providerOptions(cfg, "openrouter",
			[]openrouter.Option{openrouter.WithAPIKey(cfg.APIKey)},
			nil,
			func(c *http.Client) openrouter.Option { return openrouter.WithHTTPClient(c) },
			func(o ...openrouter.Option) (fantasy.Provider, error) { return openrouter.New(o...) },
		)
	case apiVercel:
		return providerOptions(cfg, "vercel",
			[]vercel.Option{vercel.WithAPIKey(cfg.APIKey)},
			func(u string) vercel.Option { return vercel.WithBaseURL(u) },
			func(c *http.Client) vercel.Option { return vercel.WithHTTPClient(c) },
			func(o ...vercel.Option) (fantasy.Provider, error) { return vercel.New(o...) },
		)
	case apiBedrock:
		var opts []bedrock.Option
		if cfg.APIKey != "" {
			opts = append(opts, bedrock.WithAPIKey(cfg.APIKey))
		}
		return providerOptions(cfg, "bedrock", opts,
			nil,
			func(c *http.Client) bedrock.Option { return bedrock.WithHTTPClient(c) },
			func(o ...bedrock.Option) (fantasy.Provider, error) { return bedrock.New(o...) },
		)
	default:
		return newCompatProvider(cfg)
	}
}
