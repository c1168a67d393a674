package cli

import (
	"context"

	"jobmatch/internal/common"
	"jobmatch/internal/errors"
	"jobmatch/internal/types"

	"github.com/spf13/cobra"
)

func newInsightsCmd(opts *rootOptions) *cobra.Command {
	var matchesFile string

	cmd := &cobra.Command{
		Use:   "insights [<resume-file> <jobs-file-or-dir>...]",
		Short: "Summarize match results",
		Long: `Summarize a set of match results: the average score, how many jobs
fall into each score bucket, and the skills you match or miss most often.

Read saved results with --matches (the output of 'jobmatch match -f json'), or
pass a resume and job files to match them first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case matchesFile != "" && len(args) > 0:
				return errors.NewValidationError(errors.ErrCodeInvalidInput,
					"use either --matches or a resume with job files, not both", nil)
			case matchesFile == "" && len(args) < 2:
				return errors.NewValidationError(errors.ErrCodeInvalidInput,
					"insights needs --matches or a resume with at least one job file", nil)
			}

			env, err := opts.env(cmd)
			if err != nil {
				return err
			}

			return run(cmd, opts, env,
				func(ctx context.Context, fp *common.FileProcessor) ([]types.MatchResult, error) {
					if matchesFile != "" {
						return fp.ReadMatches(matchesFile)
					}
					in, err := loadMatchInput(env, args)(ctx, fp)
					if err != nil {
						return nil, err
					}
					report, err := env.pipeline.Match(ctx, in.resume, in.jobs, common.MatchOptions{Window: env.window("")})
					if err != nil {
						return nil, err
					}
					return report.Results, nil
				},
				func(ctx context.Context, matches []types.MatchResult) (types.MatchInsights, error) {
					return env.pipeline.Insights(matches), nil
				},
				func(matches []types.MatchResult, cfg common.CommandConfig) {
					env.logger.Info("Starting insights",
						"matches", len(matches),
						"output_format", cfg.OutputFormat)
				},
			)
		},
	}

	cmd.Flags().StringVar(&matchesFile, "matches", "", "Match results file (JSON or YAML)")
	return cmd
}
