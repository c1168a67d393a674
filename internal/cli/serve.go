package cli

import (
	"context"
	"fmt"

	"jobmatch/internal/observability"
	"jobmatch/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host         string
		port         string
		watchAliases bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server that exposes matching over a REST API.

Available endpoints:
- POST /match: Score jobs against a resume
- POST /rank: Rank matched jobs into recommendations
- POST /filter: Narrow and sort a job list
- POST /insights: Summarize match results
- POST /explain: Explain one match
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

Prometheus metrics are served on the configured metrics endpoint when
observability is enabled. Use --watch-aliases to reload the skill alias file
when it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			logger := getLoggerFromContext(cmd.Context())

			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("watch-aliases") {
				cfg.Server.WatchAliases = watchAliases
			}

			om, err := observability.NewObservabilityManager(observability.FromConfig(cfg, Version))
			if err != nil {
				return fmt.Errorf("failed to initialize observability: %w", err)
			}

			metrics := om.GetMetrics()
			pipeline, err := buildPipeline(cfg, logger, recorders{matches: metrics, explanation: metrics})
			if err != nil {
				_ = om.Shutdown(context.Background())
				return err
			}

			srv := server.NewServer(cfg, server.ServerConfigFromConfig(cfg, Version), pipeline, logger)
			return srv.Start(om)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&watchAliases, "watch-aliases", false, "Reload the skill alias file when it changes (overrides config)")
	return cmd
}
