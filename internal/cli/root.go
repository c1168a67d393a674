package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"jobmatch/internal/ai"
	"jobmatch/internal/common"
	"jobmatch/internal/config"
	"jobmatch/internal/errors"
	"jobmatch/internal/matching"
	"jobmatch/internal/types"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// skipConfigAnnotation marks commands that run without loading configuration
const skipConfigAnnotation = "jobmatch/skip-config"

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configFile string
	logLevel   string
	output     common.CommandConfig
	stdout     io.Writer
	stderr     io.Writer
}

// NewRootCmd builds the jobmatch command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Stdout, os.Stderr)
}

// newRootCmd writes command output to stdout and logs to stderr
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "jobmatch",
		Short: "Match a resume against job postings",
		Long: `jobmatch scores how well a resume fits a set of job postings. It
resolves skill aliases, weighs skills, experience, keywords and embeddings,
and turns the scores into ranked recommendations with short explanations.

Job postings are read from JSON or YAML files and directories. Results can be
printed as json, text or markdown, or served over HTTP with 'jobmatch serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: config.yaml in /etc/jobmatch, $HOME/.jobmatch or .)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVarP(&opts.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	flags.StringVarP(&opts.output.OutputFormat, "format", "f", "", "Output format: json, text, or markdown")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newMatchCmd(opts),
		newRankCmd(opts),
		newFilterCmd(opts),
		newInsightsCmd(opts),
		newExplainCmd(opts),
		newServeCmd(opts),
		newVersionCmd(opts),
	)
	return rootCmd
}

// Execute runs the command tree with args from the command line
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads configuration, creates the logger and stores both in the
// command context
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadConfigFile(o.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	level, err := errors.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid log level", err)
	}
	// stdout carries command output, so logs go to stderr
	logger := errors.NewLoggerWithWriter(o.stderr, level)

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	if o.output.OutputFormat == "" {
		o.output.OutputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(o.output.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}

	logger.Debug("Configuration ready",
		"command", cmd.Name(),
		"ai_enabled", cfg.AI.Enabled,
		"format", o.output.OutputFormat)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

// recorders carries the optional metric sinks of a pipeline
type recorders struct {
	matches     common.MatchRecorder
	explanation ai.Recorder
}

// buildPipeline wires the engine, the skill aliases and the explainer from cfg
func buildPipeline(cfg *config.Config, logger *errors.Logger, rec recorders) (*common.Pipeline, error) {
	resolver, err := matching.LoadSkillResolver(cfg.Matching.AliasFile)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load skill aliases", err).
			WithContext("key", "matching.aliasFile")
	}

	engine := matching.NewEngine(matching.EngineConfig{
		Resolver: resolver,
		Workers:  cfg.Matching.Workers,
	})

	var provider ai.Provider
	if cfg.AI.Enabled {
		p, err := ai.NewProvider(cfg.GetExplainConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI provider: %w", err)
		}
		provider = p
	}

	explainer := ai.NewExplainer(provider, ai.ExplainerConfig{
		Timeout:  cfg.Matching.ExplainTimeout,
		Workers:  cfg.Matching.Workers,
		Recorder: rec.explanation,
	}, logger)

	return common.NewPipeline(engine, explainer, rec.matches, logger), nil
}

// commandEnv is what a file-based command needs to run
type commandEnv struct {
	cfg      *config.Config
	logger   *errors.Logger
	pipeline *common.Pipeline
	files    *common.FileProcessor
	output   *common.OutputHandler
}

func (o *rootOptions) env(cmd *cobra.Command) (*commandEnv, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	pipeline, err := buildPipeline(cfg, logger, recorders{})
	if err != nil {
		return nil, err
	}
	return &commandEnv{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		files:    common.NewFileProcessor(logger, cfg.App.MaxFileSize),
		output:   common.NewOutputHandlerWithWriter(logger, o.stdout),
	}, nil
}

// run loads input, runs the operation and writes its output
func run[Input, Output any](cmd *cobra.Command, opts *rootOptions, env *commandEnv,
	load common.LoadInputFunc[Input],
	operation common.OperationFunc[Input, Output],
	logDetails common.LogDetailsFunc[Input],
) error {
	return common.RunCommand(cmd.Context(), env.logger, env.files, env.output, opts.output, load, operation, logDetails)
}

// loadJobs reads job files and directories with the configured source timeout
func (e *commandEnv) loadJobs(ctx context.Context, paths []string) ([]types.JobPosting, error) {
	return e.files.LoadJobs(ctx, paths, e.cfg.Matching.SourceTimeout, nil)
}

// window falls back to the configured default window
func (e *commandEnv) window(flag string) string {
	if flag != "" {
		return flag
	}
	return e.cfg.Matching.DefaultWindow
}
