package cli

import (
	"context"
	"fmt"

	"jobmatch/internal/common"
	"jobmatch/internal/errors"
	"jobmatch/internal/types"

	"github.com/spf13/cobra"
)

type explainInput struct {
	resume types.ResumeProfile
	job    types.JobPosting
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "explain <resume-file> <jobs-file>",
		Short: "Explain why one job fits a resume",
		Long: `Score one job against a resume and write a short recommendation.
With AI enabled the sentence comes from the configured model; otherwise, or
when the model fails, a template built from the match is used.

A jobs file holding several postings needs --job-id to pick one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd)
			if err != nil {
				return err
			}

			return run(cmd, opts, env,
				func(ctx context.Context, fp *common.FileProcessor) (explainInput, error) {
					resume, err := fp.ReadResume(args[0])
					if err != nil {
						return explainInput{}, err
					}
					jobs, err := env.loadJobs(ctx, args[1:])
					if err != nil {
						return explainInput{}, err
					}
					job, err := pickJob(jobs, jobID)
					if err != nil {
						return explainInput{}, err
					}
					return explainInput{resume: resume, job: job}, nil
				},
				func(ctx context.Context, in explainInput) (types.MatchResult, error) {
					return env.pipeline.Explain(ctx, in.resume, in.job, nil)
				},
				func(in explainInput, cfg common.CommandConfig) {
					env.logger.Info("Starting explain",
						"resume_id", in.resume.ID,
						"job_id", in.job.ID,
						"ai_enabled", env.cfg.AI.Enabled,
						"output_format", cfg.OutputFormat)
				},
			)
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "ID of the job to explain")
	return cmd
}

// pickJob selects the job with id, or the only job when id is empty
func pickJob(jobs []types.JobPosting, id string) (types.JobPosting, error) {
	if id == "" {
		if len(jobs) != 1 {
			return types.JobPosting{}, errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("found %d jobs, use --job-id to pick one", len(jobs)), nil)
		}
		return jobs[0], nil
	}
	for _, job := range jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return types.JobPosting{}, errors.NewValidationError(errors.ErrCodeInvalidInput,
		fmt.Sprintf("job %q not found", id), nil).WithContext("job_id", id)
}
