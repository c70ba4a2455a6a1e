package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	glamour "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/x/exp/ordered"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"

	"github.com/dotcommander/toolpilot/internal/agent"
	"github.com/dotcommander/toolpilot/internal/config"
	"github.com/dotcommander/toolpilot/internal/errs"
	imcp "github.com/dotcommander/toolpilot/internal/mcp"
	"github.com/dotcommander/toolpilot/internal/present"
)

var logger = xlog.NewPackageLogger("github.com/dotcommander/toolpilot/internal", "cmd")

const progName = "toolpilot"

// RunnerFactory creates the agent runner for one query.
type RunnerFactory func(cfg *config.Config, tools agent.Tools) agent.Runner

func newAgentRunner(cfg *config.Config, tools agent.Tools) agent.Runner {
	return agent.New(cfg, tools)
}

type app struct {
	build     BuildInfo
	cfg       config.Config
	cfgErr    error
	newRunner RunnerFactory
	mcpOpts   []imcp.Option
}

// Option customizes the root command.
type Option func(*app)

// WithRunnerFactory replaces the agent runner.
func WithRunnerFactory(f RunnerFactory) Option {
	return func(rt *app) {
		rt.newRunner = f
	}
}

// WithSessionOptions adds options to every MCP session the command opens.
func WithSessionOptions(opts ...imcp.Option) Option {
	return func(rt *app) {
		rt.mcpOpts = append(rt.mcpOpts, opts...)
	}
}

// NewRootCmd constructs the Cobra root command.
func NewRootCmd(build BuildInfo, cfg config.Config, cfgErr error, opts ...Option) *cobra.Command {
	// XXX: unset error styles in Glamour dark and light styles.
	glamour.DarkStyleConfig.CodeBlock.Chroma.Error.BackgroundColor = new(string)
	glamour.LightStyleConfig.CodeBlock.Chroma.Error.BackgroundColor = new(string)

	rt := &app{
		build:     normalizeBuildInfo(build),
		cfg:       cfg,
		cfgErr:    cfgErr,
		newRunner: newAgentRunner,
	}
	for _, opt := range opts {
		opt(rt)
	}

	rootCmd := &cobra.Command{
		Use:           "toolpilot [QUERY]",
		Short:         "Answer a question with a local model and the tools of an MCP server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		Example:       randomExample(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("log-level") {
				return nil
			}
			if err := config.SetupLogging(cmd.ErrOrStderr(), rt.cfg.LogLevel); err != nil {
				return errs.Wrap(err, "Invalid log level.")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return rt.runAgent(ctx, cmd.OutOrStdout(), args)
		},
	}

	rootCmd.SetUsageFunc(usageFunc)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newFlagParseError(err)
	})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.Version = rt.build.Version
	rootCmd.SetVersionTemplate(versionTemplate(rt.build))

	initRootFlags(rootCmd, &rt.cfg)

	rootCmd.AddCommand(newConfigCmd(rt))
	rootCmd.AddCommand(newMCPCmd(rt))
	rootCmd.AddCommand(newManCmd(rootCmd))

	rootCmd.InitDefaultCompletionCmd()

	return rootCmd
}

func (rt *app) runAgent(ctx context.Context, out io.Writer, args []string) error {
	query := ordered.First(removeWhitespace(strings.Join(args, " ")), rt.cfg.Query, config.DefaultQuery)
	progress := rt.progress(out)

	progress.Step("Initializing model...")
	mod := rt.cfg.ModelConfig()
	if err := mod.Validate(); err != nil {
		return errs.Wrap(err, "Invalid model configuration.")
	}
	logger.KV(xlog.INFO, "model", mod.String(), "base_url", mod.BaseURL)

	progress.Step("Setting up MCP server parameters...")
	svc := imcp.New(&rt.cfg)
	specs, err := svc.Specs()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		logger.KV(xlog.INFO, "server", spec.Name, "command", spec.CommandLine())
	}

	progress.Step("Connecting to MCP server and running agent...")
	var answer string
	sessionOpts := append([]imcp.Option{imcp.WithClientInfo(progName, rt.build.Version)}, rt.mcpOpts...)
	err = imcp.WithToolbox(ctx, specs, func(ctx context.Context, box *imcp.Toolbox) error {
		var err error
		answer, err = rt.newRunner(&rt.cfg, box).Run(ctx, query)
		return err
	}, svc.Options(sessionOpts...)...)
	if err != nil {
		return runFailure(err)
	}

	progress.Answer(answer)
	progress.Done()
	return nil
}

func (rt *app) progress(out io.Writer) *present.Progress {
	if out != os.Stdout || !present.IsOutputTTY() || rt.cfg.Raw {
		return present.NewProgress(out)
	}
	return present.NewProgress(out,
		present.WithStyles(present.StdoutStyles()),
		present.WithMarkdown(rt.cfg.WordWrap),
	)
}

// runFailure attaches a user-facing reason to a failed session or run.
func runFailure(err error) error {
	var (
		uerr errs.Error
		lerr *imcp.LaunchError
		perr *imcp.ProtocolError
		rerr *agent.RunError
	)
	switch {
	case errors.As(err, &uerr):
		return err
	case errors.Is(err, context.Canceled):
		return errs.Wrap(err, "Interrupted.")
	case errors.As(err, &lerr):
		return errs.Wrapf(err, "Could not start MCP server %q.", lerr.Server)
	case errors.As(err, &rerr) && errors.As(err, &perr):
		return errs.Wrapf(err, "MCP server %q failed during the run.", perr.Server)
	case errors.As(err, &perr):
		return errs.Wrapf(err, "Could not connect to MCP server %q.", perr.Server)
	case errors.As(err, &rerr):
		return errs.Wrap(err, "The agent run failed.")
	default:
		return errs.Wrap(err, "Unexpected error.")
	}
}

func removeWhitespace(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func printf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
