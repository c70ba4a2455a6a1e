package config

import (
	"errors"
	"fmt"
	"strings"
)

// Built-in model defaults: a local Ollama endpoint serving a small coder model.
const (
	DefaultAPI           = "ollama"
	DefaultModelName     = "qwen2.5-coder:7b"
	DefaultBaseURL       = "http://127.0.0.1:11434/v1"
	DefaultMaxTokens     = 2048
	DefaultContextWindow = 8192
)

// ModelConfig describes which inference endpoint to use and its generation
// limits. It is a value: copies never share state and nothing mutates it
// after construction.
type ModelConfig struct {
	API           string
	Model         string
	BaseURL       string
	Fallback      string
	MaxTokens     int64
	ContextWindow int64
}

// DefaultModel returns the built-in model descriptor.
//
// It performs no I/O; an unreachable endpoint surfaces on first use.
func DefaultModel() ModelConfig {
	return ModelConfig{
		API:           DefaultAPI,
		Model:         DefaultModelName,
		BaseURL:       DefaultBaseURL,
		MaxTokens:     DefaultMaxTokens,
		ContextWindow: DefaultContextWindow,
	}
}

// Validate reports descriptor fields that can never work.
func (m ModelConfig) Validate() error {
	var problems []error
	if strings.TrimSpace(m.API) == "" {
		problems = append(problems, errors.New("api is empty"))
	}
	if strings.TrimSpace(m.Model) == "" {
		problems = append(problems, errors.New("model is empty"))
	}
	if m.MaxTokens <= 0 {
		problems = append(problems, fmt.Errorf("max tokens must be positive, got %d", m.MaxTokens))
	}
	if m.ContextWindow <= 0 {
		problems = append(problems, fmt.Errorf("context window must be positive, got %d", m.ContextWindow))
	}
	if err := errors.Join(problems...); err != nil {
		return fmt.Errorf("invalid model config: %w", err)
	}
	return nil
}

func (m ModelConfig) String() string {
	return m.API + "/" + m.Model
}

// ModelConfig returns the model descriptor with settings applied over the
// built-in defaults.
func (c *Config) ModelConfig() ModelConfig {
	m := DefaultModel()
	if c.API != "" {
		m.API = c.API
		if c.API != DefaultAPI {
			m.BaseURL = ""
		}
	}
	if c.Model != "" {
		m.Model = c.Model
	}
	if api, ok := c.APIs.Find(m.API); ok && api.BaseURL != "" {
		m.BaseURL = api.BaseURL
	}
	if c.BaseURL != "" {
		m.BaseURL = c.BaseURL
	}
	if c.Fallback != "" {
		m.Fallback = c.Fallback
	}
	if c.MaxTokens != 0 {
		m.MaxTokens = c.MaxTokens
	}
	if c.ContextWindow != 0 {
		m.ContextWindow = c.ContextWindow
	}
	return m
}
