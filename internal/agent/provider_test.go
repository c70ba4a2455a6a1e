package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
	"github.com/dotcommander/toolpilot/internal/fantasybridge"
)

func TestNewFantasyClient(t *testing.T) {
	for name, pc := range map[string]fantasybridge.Config{
		"ollama":     {API: "ollama", BaseURL: config.DefaultBaseURL, APIKey: ollamaKey, ContextWindow: 8192},
		"openai":     {API: "openai"},
		"azure":      {API: "azure", APIKey: "token", BaseURL: "https://example.openai.azure.com"},
		"openrouter": {API: "openrouter", APIKey: "token"},
		"vercel":     {API: "vercel", APIKey: "token"},
		"compatible": {API: "deepseek", BaseURL: "https://api.deepseek.com"},
	} {
		t.Run(name, func(t *testing.T) {
			client, err := NewFantasyClient(pc)
			require.NoError(t, err)
			require.NotNil(t, client)
		})
	}

	client, err := NewFantasyClient(fantasybridge.Config{})
	require.Error(t, err)
	require.Nil(t, client)
}

func TestApplyProxyConfig(t *testing.T) {
	var pc fantasybridge.Config
	require.NoError(t, ApplyProxyConfig("", &pc))
	require.Nil(t, pc.HTTPClient)

	require.NoError(t, ApplyProxyConfig("http://127.0.0.1:8080", &pc))
	require.NotNil(t, pc.HTTPClient)

	err := ApplyProxyConfig("://nope", &pc)
	require.Equal(t, "There was an error parsing your proxy URL.", errs.Reason(err, ""))
}

func TestPrepareProviderConfigOllama(t *testing.T) {
	cfg := config.Default()
	mod := cfg.ModelConfig()
	api, _ := cfg.APIs.Find(mod.API)

	pc, err := prepareProviderConfig(context.Background(), mod, api, &cfg)
	require.NoError(t, err)
	require.Equal(t, fantasybridge.Config{
		API:           "ollama",
		APIKey:        ollamaKey,
		BaseURL:       config.DefaultBaseURL,
		ContextWindow: config.DefaultContextWindow,
	}, pc)
}

func TestPrepareProviderConfigKeys(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	t.Run("missing required key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		mod := config.ModelConfig{API: "anthropic", Model: "claude-sonnet-4"}
		_, err := prepareProviderConfig(ctx, mod, config.API{Name: "anthropic"}, &cfg)
		require.Equal(t, "Anthropic authentication failed", errs.Reason(err, ""))
	})

	t.Run("key from fallback env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		mod := config.ModelConfig{API: "openai", Model: "gpt-4o"}
		pc, err := prepareProviderConfig(ctx, mod, config.API{Name: "openai"}, &cfg)
		require.NoError(t, err)
		require.Equal(t, "sk-env", pc.APIKey)
	})

	t.Run("azure-ad uses the azure provider and api user", func(t *testing.T) {
		cfg := config.Default()
		mod := config.ModelConfig{API: "azure-ad", Model: "gpt-4o"}
		pc, err := prepareProviderConfig(ctx, mod, config.API{Name: "azure-ad", APIKey: "token", User: "dana"}, &cfg)
		require.NoError(t, err)
		require.Equal(t, "azure", pc.API)
		require.Equal(t, "dana", cfg.User)
	})

	t.Run("optional key", func(t *testing.T) {
		mod := config.ModelConfig{API: "bedrock", Model: "claude"}
		pc, err := prepareProviderConfig(ctx, mod, config.API{Name: "bedrock"}, &cfg)
		require.NoError(t, err)
		require.Empty(t, pc.APIKey)
	})
}

func TestConfiguredKey(t *testing.T) {
	ctx := context.Background()
	t.Setenv("TOOLPILOT_TEST_KEY", "from-env")

	for name, tc := range map[string]struct {
		api  config.API
		want string
	}{
		"literal":          {config.API{APIKey: "literal", APIKeyEnv: "TOOLPILOT_TEST_KEY"}, "literal"},
		"command":          {config.API{APIKeyCmd: `echo "  secret  "`}, "secret"},
		"command over env": {config.API{APIKeyCmd: "echo cmd", APIKeyEnv: "TOOLPILOT_TEST_KEY"}, "cmd"},
		"env":              {config.API{APIKeyEnv: "TOOLPILOT_TEST_KEY"}, "from-env"},
		"nothing":          {config.API{}, ""},
	} {
		t.Run(name, func(t *testing.T) {
			key, err := configuredKey(ctx, tc.api)
			require.NoError(t, err)
			require.Equal(t, tc.want, key)
		})
	}

	_, err := configuredKey(ctx, config.API{APIKeyCmd: "   "})
	require.Equal(t, "Failed to parse api-key-cmd", errs.Reason(err, ""))
}
