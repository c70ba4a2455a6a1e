package agent

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/caarlos0/go-shellwords"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
	"github.com/dotcommander/toolpilot/internal/fantasybridge"
	"github.com/dotcommander/toolpilot/internal/stream"
)

// providerAuth describes how an API gets its key. keyEnv is the fallback
// environment variable; an empty keyEnv makes the key optional.
type providerAuth struct {
	title  string
	keyEnv string
	keyURL string
}

var providerAuths = map[string]providerAuth{
	config.DefaultAPI: {title: "Ollama"},
	"bedrock":         {title: "Bedrock"},
	"anthropic":       {"Anthropic", "ANTHROPIC_API_KEY", "https://console.anthropic.com/settings/keys"},
	"google":          {"Google", "GOOGLE_API_KEY", "https://aistudio.google.com/app/apikey"},
	"azure":           {"Azure", "AZURE_OPENAI_KEY", "https://aka.ms/oai/access"},
	"azure-ad":        {"Azure", "AZURE_OPENAI_KEY", "https://aka.ms/oai/access"},
	"openrouter":      {"OpenRouter", "OPENROUTER_API_KEY", "https://openrouter.ai/keys"},
	"vercel":          {"Vercel AI Gateway", "VERCEL_API_KEY", "https://vercel.com/dashboard/tokens"},
}

// defaultAuth covers OpenAI and every other OpenAI-compatible API.
var defaultAuth = providerAuth{"OpenAI", "OPENAI_API_KEY", "https://platform.openai.com/account/api-keys"}

// ollamaKey is sent when no key is configured; Ollama ignores its value but
// the OpenAI-compatible client refuses an empty one.
const ollamaKey = "ollama"

func prepareProviderConfig(ctx context.Context, mod config.ModelConfig, api config.API, cfg *config.Config) (fantasybridge.Config, error) {
	auth, ok := providerAuths[mod.API]
	if !ok {
		auth = defaultAuth
	}
	key, err := apiKey(ctx, api, auth)
	if err != nil {
		return fantasybridge.Config{}, errs.Wrapf(err, "%s authentication failed", auth.title)
	}

	pc := fantasybridge.Config{API: mod.API, APIKey: key, BaseURL: mod.BaseURL}
	switch mod.API {
	case config.DefaultAPI:
		if pc.BaseURL == "" {
			pc.BaseURL = config.DefaultBaseURL
		}
		if pc.APIKey == "" {
			pc.APIKey = ollamaKey
		}
		pc.ContextWindow = mod.ContextWindow
	case "azure", "azure-ad":
		pc.API = "azure"
		if api.User != "" {
			cfg.User = api.User
		}
	}
	return pc, nil
}

// apiKey resolves the key of api from its settings, then from auth's
// environment variable. Only APIs with a keyEnv require one.
func apiKey(ctx context.Context, api config.API, auth providerAuth) (string, error) {
	key, err := configuredKey(ctx, api)
	if err != nil || key != "" || auth.keyEnv == "" {
		return key, err
	}
	if key = os.Getenv(auth.keyEnv); key != "" {
		return key, nil
	}
	return "", errs.Error{
		Reason: fmt.Sprintf("%[1]s required; set %[1]s or update toolpilot.yml through toolpilot config edit.", auth.keyEnv),
		Err:    errs.UserErrorf("You can grab one at %s", auth.keyURL),
	}
}

// configuredKey returns the api-key setting, else the output of
// api-key-cmd, else the api-key-env variable.
func configuredKey(ctx context.Context, api config.API) (string, error) {
	switch {
	case api.APIKey != "":
		return api.APIKey, nil
	case api.APIKeyCmd != "":
		return keyFromCommand(ctx, api.APIKeyCmd)
	case api.APIKeyEnv != "":
		return os.Getenv(api.APIKeyEnv), nil
	default:
		return "", nil
	}
}

func keyFromCommand(ctx context.Context, command string) (string, error) {
	args, err := shellwords.Parse(command)
	if err == nil && len(args) == 0 {
		err = errs.UserErrorf("api-key-cmd is empty")
	}
	if err != nil {
		return "", errs.Wrap(err, "Failed to parse api-key-cmd")
	}
	// #nosec G204 -- api-key-cmd is configured by the local user.
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return "", errs.Wrap(err, "Cannot exec api-key-cmd")
	}
	return strings.TrimSpace(string(out)), nil
}

// ApplyProxyConfig routes the provider's HTTP traffic through httpProxy.
func ApplyProxyConfig(httpProxy string, providerCfg *fantasybridge.Config) error {
	if httpProxy == "" {
		return nil
	}
	proxyURL, err := url.Parse(httpProxy)
	if err != nil {
		return errs.Wrap(err, "There was an error parsing your proxy URL.")
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return errs.Wrap(fmt.Errorf("default transport is %T", http.DefaultTransport), "Could not configure proxy.")
	}
	tr := base.Clone()
	tr.Proxy = http.ProxyURL(proxyURL)
	tr.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = 10 * time.Second
	tr.ResponseHeaderTimeout = 30 * time.Second
	providerCfg.HTTPClient = &http.Client{Transport: tr}
	return nil
}

// NewFantasyClient is the default ClientFactory.
func NewFantasyClient(cfg fantasybridge.Config) (stream.Client, error) {
	if cfg.API == "" {
		return nil, errs.Error{Reason: "missing fantasy provider configuration"}
	}
	client, err := fantasybridge.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("new fantasy bridge client: %w", err)
	}
	return client, nil
}
