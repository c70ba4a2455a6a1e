package cmd

import (
	"time"

	"github.com/caarlos0/duration"
	"github.com/spf13/cobra"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/present"
)

var helpText = map[string]string{
	"api":              "OpenAI compatible REST API (ollama, openai, anthropic, ...).",
	"model":            "Default model.",
	"base-url":         "Base URL of the model endpoint.",
	"fallback":         "Model to retry with when the default model is missing.",
	"http-proxy":       "HTTP proxy to use for API requests.",
	"max-tokens":       "Maximum number of tokens in a response.",
	"context-window":   "Context window size passed to Ollama.",
	"temp":             "Temperature (randomness) of results, from 0.0 to 2.0, -1.0 to disable.",
	"topp":             "TopP, an alternative to temperature that narrows response, from 0.0 to 1.0, -1.0 to disable.",
	"topk":             "TopK, only sample from the top K options for each subsequent token, -1 to disable.",
	"system":           "System prompt: raw text, a file:// path or an http(s) URL.",
	"max-steps":        "Maximum number of agent steps.",
	"max-retries":      "Maximum number of times to retry API calls.",
	"raw":              "Print plain output, even on a TTY.",
	"word-wrap":        "Wrap formatted output at specific width.",
	"log-level":        "Log level (DEBUG, INFO, NOTICE, WARNING, ERROR).",
	"mcp-disable":      "Disable specific MCP servers ('*' disables all).",
	"mcp-timeout":      "Timeout for the MCP handshake and tool listing.",
	"mcp-call-timeout": "Timeout for a single MCP tool call.",
	"mcp-grace-period": "Time an MCP server gets to exit before it is killed.",
	"help":             "Show help and exit.",
	"version":          "Show version and exit.",
}

func initRootFlags(cmd *cobra.Command, cfg *config.Config) {
	desc := func(name string) string {
		return present.StdoutStyles().FlagDesc.Render(helpText[name])
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Model, "model", "m", cfg.Model, desc("model"))
	flags.StringVarP(&cfg.API, "api", "a", cfg.API, desc("api"))
	flags.StringVarP(&cfg.BaseURL, "base-url", "u", cfg.BaseURL, desc("base-url"))
	flags.StringVar(&cfg.Fallback, "fallback", cfg.Fallback, desc("fallback"))
	flags.StringVarP(&cfg.HTTPProxy, "http-proxy", "x", cfg.HTTPProxy, desc("http-proxy"))
	flags.Int64Var(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, desc("max-tokens"))
	flags.Int64Var(&cfg.ContextWindow, "context-window", cfg.ContextWindow, desc("context-window"))
	flags.Float64Var(&cfg.Temperature, "temp", cfg.Temperature, desc("temp"))
	flags.Float64Var(&cfg.TopP, "topp", cfg.TopP, desc("topp"))
	flags.Int64Var(&cfg.TopK, "topk", cfg.TopK, desc("topk"))
	flags.StringVarP(&cfg.System, "system", "s", cfg.System, desc("system"))
	flags.IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, desc("max-steps"))
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, desc("max-retries"))
	flags.BoolVarP(&cfg.Raw, "raw", "r", cfg.Raw, desc("raw"))
	flags.IntVar(&cfg.WordWrap, "word-wrap", cfg.WordWrap, desc("word-wrap"))
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, desc("log-level"))
	flags.StringArrayVar(&cfg.MCPDisable, "mcp-disable", cfg.MCPDisable, desc("mcp-disable"))
	flags.Var(newDurationFlag(cfg.MCPTimeout, &cfg.MCPTimeout), "mcp-timeout", desc("mcp-timeout"))
	flags.Var(newDurationFlag(cfg.MCPCallTimeout, &cfg.MCPCallTimeout), "mcp-call-timeout", desc("mcp-call-timeout"))
	flags.Var(newDurationFlag(cfg.MCPGracePeriod, &cfg.MCPGracePeriod), "mcp-grace-period", desc("mcp-grace-period"))
	flags.BoolP("help", "h", false, desc("help"))
	flags.BoolVarP(&cfg.Version, "version", "v", false, desc("version"))
	flags.SortFlags = false

	flags.BoolVar(&memprofile, "memprofile", false, "Write memory profiles to CWD")
	_ = flags.MarkHidden("memprofile")

	_ = cmd.RegisterFlagCompletionFunc("api", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(cfg.APIs))
		for _, api := range cfg.APIs {
			names = append(names, api.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mcp-disable", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(cfg.MCPServers))
		for name := range cfg.MCPServers {
			names = append(names, name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// durationFlag is a pflag.Value accepting days and weeks on top of the
// time.ParseDuration units.
type durationFlag time.Duration

func newDurationFlag(val time.Duration, p *time.Duration) *durationFlag {
	*p = val
	return (*durationFlag)(p)
}

func (d *durationFlag) Set(s string) error {
	v, err := duration.Parse(s)
	if err != nil {
		return err //nolint:wrapcheck
	}
	*d = durationFlag(v)
	return nil
}

func (d *durationFlag) String() string {
	return time.Duration(*d).String()
}

func (*durationFlag) Type() string {
	return "duration"
}
