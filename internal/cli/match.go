package cli

import (
	"context"

	"jobmatch/internal/common"
	"jobmatch/internal/matching"
	"jobmatch/internal/types"

	"github.com/spf13/cobra"
)

// matchInput is a résumé with the jobs to score it against
type matchInput struct {
	resume types.ResumeProfile
	jobs   []types.JobPosting
}

func loadMatchInput(env *commandEnv, args []string) common.LoadInputFunc[matchInput] {
	return func(ctx context.Context, fp *common.FileProcessor) (matchInput, error) {
		resume, err := fp.ReadResume(args[0])
		if err != nil {
			return matchInput{}, err
		}
		jobs, err := env.loadJobs(ctx, args[1:])
		if err != nil {
			return matchInput{}, err
		}
		return matchInput{resume: resume, jobs: jobs}, nil
	}
}

func completeWindows(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matching.WindowKeys(), cobra.ShellCompDirectiveNoFileComp
}

func newMatchCmd(opts *rootOptions) *cobra.Command {
	var matchOpts common.MatchOptions

	cmd := &cobra.Command{
		Use:   "match <resume-file> <jobs-file-or-dir>...",
		Short: "Score every job against a resume",
		Long: `Score every job posting against a resume. Each result carries the
overall score, the skills and experience sub-scores, matched and missing
skills, experience evidence and the keywords the two share.

Results keep the order of the input jobs. Use --window to drop postings older
than 3h, 24h, 7d or 30d, and --explain to attach a recommendation sentence.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd)
			if err != nil {
				return err
			}
			matchOpts.Window = env.window(matchOpts.Window)

			return run(cmd, opts, env,
				loadMatchInput(env, args),
				func(ctx context.Context, in matchInput) (types.MatchReport, error) {
					return env.pipeline.Match(ctx, in.resume, in.jobs, matchOpts)
				},
				func(in matchInput, cfg common.CommandConfig) {
					env.logger.Info("Starting match",
						"resume_id", in.resume.ID,
						"jobs", len(in.jobs),
						"window", matchOpts.Window,
						"explain", matchOpts.Explain,
						"output_format", cfg.OutputFormat)
				},
			)
		},
	}

	cmd.Flags().StringVar(&matchOpts.Window, "window", "", "Only jobs posted within 3h, 24h, 7d, 30d or all (default from config)")
	cmd.Flags().BoolVar(&matchOpts.Explain, "explain", false, "Attach a recommendation sentence to each result")
	_ = cmd.RegisterFlagCompletionFunc("window", completeWindows)
	return cmd
}

func newRankCmd(opts *rootOptions) *cobra.Command {
	var (
		matchOpts common.MatchOptions
		prefsFile string
		actions   common.JobActions
	)

	cmd := &cobra.Command{
		Use:   "rank <resume-file> <jobs-file-or-dir>...",
		Short: "Recommend jobs that fit a resume and your preferences",
		Long: `Rank jobs into recommendations. Matches below the minimum score are
dropped, dismissed jobs are excluded, and the rest are ordered by a
recommendation score that boosts saved jobs and preferred work types and
seniority levels. Each recommendation lists up to three reasons.

Preferences are read from a JSON or YAML file given with --prefs; without one
the defaults apply with the minimum score from the configuration.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd)
			if err != nil {
				return err
			}
			matchOpts.Window = env.window(matchOpts.Window)

			type rankInput struct {
				matchInput
				prefs types.Preferences
			}

			return run(cmd, opts, env,
				func(ctx context.Context, fp *common.FileProcessor) (rankInput, error) {
					in, err := loadMatchInput(env, args)(ctx, fp)
					if err != nil {
						return rankInput{}, err
					}
					prefs := env.cfg.GetDefaultPreferences()
					if prefsFile != "" {
						if prefs, err = fp.ReadPreferences(prefsFile); err != nil {
							return rankInput{}, err
						}
					}
					return rankInput{matchInput: in, prefs: prefs}, nil
				},
				func(ctx context.Context, in rankInput) (types.RankReport, error) {
					return env.pipeline.Rank(ctx, in.resume, in.jobs, in.prefs, actions, matchOpts)
				},
				func(in rankInput, cfg common.CommandConfig) {
					env.logger.Info("Starting rank",
						"resume_id", in.resume.ID,
						"jobs", len(in.jobs),
						"min_match_score", in.prefs.MinMatchScore,
						"saved", len(actions.Saved),
						"applied", len(actions.Applied),
						"dismissed", len(actions.Dismissed),
						"output_format", cfg.OutputFormat)
				},
			)
		},
	}

	cmd.Flags().StringVar(&prefsFile, "prefs", "", "Preferences file (JSON or YAML)")
	cmd.Flags().StringSliceVar(&actions.Saved, "saved", nil, "IDs of jobs you saved")
	cmd.Flags().StringSliceVar(&actions.Applied, "applied", nil, "IDs of jobs you applied to")
	cmd.Flags().StringSliceVar(&actions.Dismissed, "dismissed", nil, "IDs of jobs you dismissed")
	cmd.Flags().StringVar(&matchOpts.Window, "window", "", "Only jobs posted within 3h, 24h, 7d, 30d or all (default from config)")
	cmd.Flags().BoolVar(&matchOpts.Explain, "explain", false, "Attach a recommendation sentence to each recommendation")
	_ = cmd.RegisterFlagCompletionFunc("window", completeWindows)
	return cmd
}
