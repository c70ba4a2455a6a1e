package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/fantasy"
	"github.com/effective-security/xlog"

	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
	"github.com/dotcommander/toolpilot/internal/fantasybridge"
	"github.com/dotcommander/toolpilot/internal/mcp"
	"github.com/dotcommander/toolpilot/internal/proto"
	"github.com/dotcommander/toolpilot/internal/stream"
)

var logger = xlog.NewPackageLogger("github.com/dotcommander/toolpilot/internal", "agent")

// ClientFactory creates the streaming client for a provider configuration.
type ClientFactory func(fantasybridge.Config) (stream.Client, error)

// Option configures a Service.
type Option func(*Service)

// WithClientFactory replaces the fantasy bridge client.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Service) {
		s.newClient = f
	}
}

// Service is the production Runner.
type Service struct {
	cfg       *config.Config
	tools     Tools
	newClient ClientFactory
	retryWait func(ctx context.Context, err error)
}

var _ Runner = &Service{}

// New creates an agent service. tools may be nil, in which case the model is
// offered no tools.
func New(cfg *config.Config, tools Tools, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		tools:     tools,
		newClient: NewFantasyClient,
		retryWait: waitForRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run implements Runner. Every failure is a *RunError.
func (s *Service) Run(ctx context.Context, query string) (string, error) {
	answer, steps, err := s.run(ctx, query)
	if err != nil {
		var rerr *RunError
		if errors.As(err, &rerr) {
			return "", err
		}
		return "", &RunError{Steps: steps, Err: err}
	}
	return answer, nil
}

func (s *Service) run(ctx context.Context, query string) (string, int, error) {
	cfg := s.cfg
	mod := cfg.ModelConfig()
	if err := mod.Validate(); err != nil {
		return "", 0, errs.Wrap(err, "Invalid model configuration.")
	}

	api, ok := cfg.APIs.Find(mod.API)
	if !ok {
		api = config.API{Name: mod.API}
	}
	providerCfg, err := prepareProviderConfig(ctx, mod, api, cfg)
	if err != nil {
		return "", 0, err
	}
	if err := ApplyProxyConfig(cfg.HTTPProxy, &providerCfg); err != nil {
		return "", 0, err
	}
	client, err := s.newClient(providerCfg)
	if err != nil {
		return "", 0, err
	}

	system, err := s.systemPrompt(ctx)
	if err != nil {
		return "", 0, err
	}

	prompt := query
	model := mod.Model
	var steps int
	for attempt := 0; ; attempt++ {
		req := s.buildRequest(ctx, mod, model, system, prompt)
		var answer string
		answer, steps, err = s.steps(ctx, client, req)
		if err == nil {
			return answer, steps, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return "", steps, err
		}

		action := s.ActionForStreamError(err, mod, prompt)
		if !action.Retry || attempt >= cfg.MaxRetries {
			return "", steps, action.Err
		}
		logger.KV(xlog.WARNING,
			"status", "retry",
			"attempt", attempt+1,
			"reason", action.Err.Reason,
			"err", err.Error())
		if action.ModelOverride != "" {
			model = action.ModelOverride
		}
		if action.Prompt != "" {
			prompt = action.Prompt
		}
		s.retryWait(ctx, err)
	}
}

// steps drives one stream until a step without tool calls.
func (s *Service) steps(ctx context.Context, client stream.Client, req proto.Request) (string, int, error) {
	st := client.Request(ctx, req)
	defer func() { _ = st.Close() }()

	maxSteps := s.cfg.MaxSteps
	for step := 1; ; step++ {
		if maxSteps > 0 && step > maxSteps {
			return "", step - 1, fmt.Errorf("%w: %d steps", ErrStepBudget, maxSteps)
		}

		for st.Next() {
			if _, err := st.Current(); err != nil && !errors.Is(err, stream.ErrNoContent) {
				return "", step, err
			}
		}
		if err := st.Err(); err != nil {
			return "", step, err
		}
		if err := ctx.Err(); err != nil {
			return "", step, err
		}
		for _, warning := range st.DrainWarnings() {
			logger.KV(xlog.WARNING, "model", req.Model, "warning", warning)
		}

		statuses := st.CallTools()
		if len(statuses) == 0 {
			answer := finalAnswer(st.Messages())
			if answer == "" {
				return "", step, ErrNoAnswer
			}
			return answer, step, nil
		}
		for _, status := range statuses {
			logger.KV(xlog.INFO, "step", step, "tool", status.String())
			var perr *mcp.ProtocolError
			if errors.As(status.Err, &perr) {
				return "", step, &RunError{Steps: step, Err: perr}
			}
		}
		if err := ctx.Err(); err != nil {
			return "", step, err
		}
	}
}

func finalAnswer(messages []proto.Message) string {
	if n := len(messages); n > 0 && messages[n-1].Role == proto.RoleAssistant {
		return strings.TrimSpace(messages[n-1].Content)
	}
	return ""
}

// retryable reports errors worth classifying for a retry. Tool provider
// failures and exhausted budgets are final.
func retryable(err error) bool {
	var rerr *RunError
	return !errors.As(err, &rerr) &&
		!errors.Is(err, ErrStepBudget) &&
		!errors.Is(err, ErrNoAnswer)
}

func (s *Service) systemPrompt(ctx context.Context) (string, error) {
	if s.cfg.System == "" {
		return "", nil
	}
	msg, err := config.LoadSystemPrompt(ctx, s.cfg.System)
	if err != nil {
		return "", errs.Wrap(err, "Could not load the system prompt.")
	}
	return msg, nil
}

func (s *Service) buildRequest(ctx context.Context, mod config.ModelConfig, model, system, prompt string) proto.Request {
	cfg := s.cfg
	messages := make([]proto.Message, 0, 2)
	if system != "" {
		messages = append(messages, proto.Message{Role: proto.RoleSystem, Content: system})
	}
	messages = append(messages, proto.Message{Role: proto.RoleUser, Content: prompt})

	temperature := (*float64)(nil)
	if cfg.Temperature >= 0 {
		v := cfg.Temperature
		temperature = &v
	}
	topP := (*float64)(nil)
	if cfg.TopP >= 0 {
		v := cfg.TopP
		topP = &v
	}
	topK := (*int64)(nil)
	if cfg.TopK >= 0 {
		v := cfg.TopK
		topK = &v
	}
	maxTokens := mod.MaxTokens

	request := proto.Request{
		Messages:    messages,
		API:         mod.API,
		Model:       model,
		User:        cfg.User,
		Temperature: temperature,
		TopP:        topP,
		TopK:        topK,
		MaxTokens:   &maxTokens,
	}
	if s.tools != nil {
		request.Tools = s.tools.Tools()
		request.ToolCaller = func(name string, data []byte) (string, error) {
			return s.tools.CallTool(ctx, name, data)
		}
	}
	return request
}

func waitForRetryDelay(ctx context.Context, retryErr error) {
	var providerErr *fantasy.ProviderError
	if !errors.As(retryErr, &providerErr) {
		return
	}
	opts := fantasy.DefaultRetryOptions()
	opts.MaxRetries = 1
	opts.InitialDelayIn = 100 * time.Millisecond
	retryFn := fantasy.RetryWithExponentialBackoffRespectingRetryHeaders[struct{}](opts)
	_, _ = retryFn(ctx, func() (struct{}, error) {
		return struct{}{}, providerErr
	})
}
