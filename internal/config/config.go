package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	_ "embed"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/toolpilot/internal/errs"
)

//go:embed config_template.yml
var configTemplate string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOOLPILOT_"

// DefaultQuery is asked when neither arguments nor settings provide one.
const DefaultQuery = "Please find a remedy for hangover."

// DefaultServer is the name of the built-in tool provider.
const DefaultServer = "pubmed"

// API represents an API endpoint.
type API struct {
	Name      string
	APIKey    string `yaml:"api-key"`
	APIKeyEnv string `yaml:"api-key-env"`
	APIKeyCmd string `yaml:"api-key-cmd"`
	BaseURL   string `yaml:"base-url"`
	User      string `yaml:"user"`
}

// APIs is a type alias to allow custom YAML decoding.
type APIs []API

// UnmarshalYAML implements sorted API YAML decoding.
func (apis *APIs) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		var api API
		if err := node.Content[i+1].Decode(&api); err != nil {
			return fmt.Errorf("error decoding YAML file: %s", err)
		}
		api.Name = node.Content[i].Value
		*apis = append(*apis, api)
	}
	return nil
}

// Find returns the API entry with the given name.
func (apis APIs) Find(name string) (API, bool) {
	for _, api := range apis {
		if api.Name == name {
			return api, true
		}
	}
	return API{}, false
}

// MCPServerConfig holds configuration for a stdio MCP server.
type MCPServerConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	Env        []string `yaml:"env"`
	InheritEnv *bool    `yaml:"inherit-env"`
	Disabled   bool     `yaml:"disabled"`
}

// Settings holds persisted configuration loaded from the YAML settings file
// and environment variables.
type Settings struct {
	API           string  `yaml:"default-api" env:"API"`
	Model         string  `yaml:"default-model" env:"MODEL"`
	BaseURL       string  `yaml:"base-url" env:"BASE_URL"`
	Fallback      string  `yaml:"fallback-model" env:"FALLBACK_MODEL"`
	MaxTokens     int64   `yaml:"max-tokens" env:"MAX_TOKENS"`
	ContextWindow int64   `yaml:"context-window" env:"CONTEXT_WINDOW"`
	Temperature   float64 `yaml:"temp" env:"TEMP"`
	TopP          float64 `yaml:"topp" env:"TOPP"`
	TopK          int64   `yaml:"topk" env:"TOPK"`
	User          string  `yaml:"user" env:"USER_ID"`
	System        string  `yaml:"system" env:"SYSTEM"`
	Query         string  `yaml:"query" env:"QUERY"`
	MaxSteps      int     `yaml:"max-steps" env:"MAX_STEPS"`
	MaxRetries    int     `yaml:"max-retries" env:"MAX_RETRIES"`
	Raw           bool    `yaml:"raw" env:"RAW"`
	WordWrap      int     `yaml:"word-wrap" env:"WORD_WRAP"`
	HTTPProxy     string  `yaml:"http-proxy" env:"HTTP_PROXY"`
	LogLevel      string  `yaml:"log-level" env:"LOG_LEVEL"`
	APIs          APIs    `yaml:"apis"`

	MCPServers      map[string]MCPServerConfig `yaml:"mcp-servers"`
	MCPDisable      []string                   `yaml:"mcp-disable" env:"MCP_DISABLE"`
	MCPNoInheritEnv bool                       `yaml:"mcp-no-inherit-env" env:"MCP_NO_INHERIT_ENV"`
	MCPTimeout      time.Duration              `yaml:"mcp-timeout" env:"MCP_TIMEOUT"`
	MCPCallTimeout  time.Duration              `yaml:"mcp-call-timeout" env:"MCP_CALL_TIMEOUT"`
	MCPGracePeriod  time.Duration              `yaml:"mcp-grace-period" env:"MCP_GRACE_PERIOD"`
}

// Runtime holds CLI/runtime-only options that should not be loaded from the
// settings file.
type Runtime struct {
	SettingsPath string
	Version      bool
}

// Config is the application configuration (settings + runtime-only options).
//
// Settings fields are promoted for ergonomic access, but runtime fields are
// explicitly excluded from YAML/env parsing.
type Config struct {
	Settings `yaml:",inline"`
	Runtime  `yaml:"-" env:"-"`
}

// SettingsPath returns the default location of the settings file.
func SettingsPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Error{Err: err, Reason: "Could not determine home directory."}
	}
	return filepath.Join(home, ".config", "toolpilot", "toolpilot.yml"), nil
}

// Ensure loads settings from disk and environment and applies defaults.
//
// It also creates the default settings file if it does not exist.
func Ensure() (Config, error) {
	sp, err := SettingsPath()
	if err != nil {
		return Config{}, err
	}
	return EnsureAt(sp)
}

// EnsureAt is Ensure with an explicit settings file location.
func EnsureAt(sp string) (Config, error) {
	c := Default()
	c.SettingsPath = sp

	if err := os.MkdirAll(filepath.Dir(sp), 0o700); err != nil {
		return c, errs.Error{Err: err, Reason: "Could not create config directory."}
	}
	if err := WriteConfigFile(sp); err != nil {
		return c, err
	}
	content, err := os.ReadFile(sp)
	if err != nil {
		return c, errs.Error{Err: err, Reason: "Could not read settings file."}
	}

	// collections come from the file alone so entries can be removed
	c.APIs = nil
	c.MCPServers = nil
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, errs.Error{Err: err, Reason: "Could not parse settings file."}
	}

	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return c, errs.Error{Err: err, Reason: "Could not parse environment into settings file."}
	}

	d := Default()
	if len(c.APIs) == 0 {
		c.APIs = d.APIs
	}
	if c.MCPServers == nil {
		c.MCPServers = d.MCPServers
	}
	if c.WordWrap == 0 {
		c.WordWrap = d.WordWrap
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.MCPTimeout <= 0 {
		c.MCPTimeout = d.MCPTimeout
	}
	if c.MCPCallTimeout <= 0 {
		c.MCPCallTimeout = d.MCPCallTimeout
	}
	if c.MCPGracePeriod <= 0 {
		c.MCPGracePeriod = d.MCPGracePeriod
	}
	if c.Query == "" {
		c.Query = DefaultQuery
	}

	if err := setLogLevel(c.LogLevel); err != nil {
		return c, errs.Error{Err: err, Reason: "Invalid log level."}
	}

	return c, nil
}

// WriteConfigFile creates the config file at path if it does not exist.
func WriteConfigFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(path)
	} else if err != nil {
		return errs.Error{Err: err, Reason: "Could not stat path."}
	}
	return nil
}

func createConfigFile(path string) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	f, err := os.Create(path)
	if err != nil {
		return errs.Error{Err: err, Reason: "Could not create configuration file."}
	}
	defer func() { _ = f.Close() }()

	m := struct{ Config Config }{Config: Default()}
	if err := tmpl.Execute(f, m); err != nil {
		return errs.Error{Err: err, Reason: "Could not render template."}
	}
	return nil
}

// Default returns the default configuration values.
func Default() Config {
	m := DefaultModel()
	return Config{
		Settings: Settings{
			API:           m.API,
			Model:         m.Model,
			MaxTokens:     m.MaxTokens,
			ContextWindow: m.ContextWindow,
			Temperature:   -1,
			TopP:          -1,
			TopK:          -1,
			Query:         DefaultQuery,
			MaxSteps:      20,
			MaxRetries:    5,
			WordWrap:      80,
			LogLevel:      "WARNING",
			APIs: APIs{
				{Name: DefaultAPI, BaseURL: m.BaseURL, APIKey: "ollama"},
			},
			MCPServers: map[string]MCPServerConfig{
				DefaultServer: {
					Command: "uvx",
					Args:    []string{"--quiet", "pubmedmcp@0.1.3"},
					Env:     []string{"UV_PYTHON=3.13"},
				},
			},
			MCPTimeout:     30 * time.Second,
			MCPCallTimeout: time.Minute,
			MCPGracePeriod: 5 * time.Second,
		},
	}
}
