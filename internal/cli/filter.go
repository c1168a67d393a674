package cli

import (
	"context"

	"jobmatch/internal/common"
	"jobmatch/internal/matching"
	"jobmatch/internal/types"

	"github.com/spf13/cobra"
)

func newFilterCmd(opts *rootOptions) *cobra.Command {
	var (
		filter    types.JobFilter
		salaryMin float64
		salaryMax float64
	)

	cmd := &cobra.Command{
		Use:   "filter <jobs-file-or-dir>...",
		Short: "Narrow and sort a job list",
		Long: `Filter job postings without a resume. Keywords match the title,
company, description and required skills; title, location and company match
case-insensitively. Work type, job type and seniority accept several values.

Results are sorted by --sort: date (newest first), salary_high, salary_low or
company.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("salary-min") {
				filter.SalaryMin = &salaryMin
			}
			if cmd.Flags().Changed("salary-max") {
				filter.SalaryMax = &salaryMax
			}
			filter.Window = env.window(filter.Window)

			return run(cmd, opts, env,
				func(ctx context.Context, fp *common.FileProcessor) ([]types.JobPosting, error) {
					return env.loadJobs(ctx, args)
				},
				func(ctx context.Context, jobs []types.JobPosting) (types.JobList, error) {
					return env.pipeline.Filter(jobs, filter)
				},
				func(jobs []types.JobPosting, cfg common.CommandConfig) {
					env.logger.Info("Starting filter",
						"jobs", len(jobs),
						"window", filter.Window,
						"sort", filter.SortBy,
						"output_format", cfg.OutputFormat)
				},
			)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Keywords, "keywords", "", "Keywords to look for in title, company, description and skills")
	flags.StringVar(&filter.Title, "title", "", "Title substring")
	flags.StringVar(&filter.Location, "location", "", "Location substring")
	flags.StringSliceVar(&filter.WorkTypes, "work-type", nil, "Work types: remote, hybrid, onsite")
	flags.StringSliceVar(&filter.JobTypes, "job-type", nil, "Job types: full_time, part_time, contract, internship, temporary")
	flags.StringSliceVar(&filter.Seniority, "seniority", nil, "Seniority levels: entry, mid, senior, lead, executive")
	flags.Float64Var(&salaryMin, "salary-min", 0, "Minimum salary the posting must reach")
	flags.Float64Var(&salaryMax, "salary-max", 0, "Maximum salary the posting may start at")
	flags.StringSliceVar(&filter.Companies, "company", nil, "Company names")
	flags.StringVar(&filter.Window, "window", "", "Only jobs posted within 3h, 24h, 7d, 30d or all (default from config)")
	flags.StringVar(&filter.SortBy, "sort", matching.SortByDate, "Sort by date, salary_high, salary_low or company")

	_ = cmd.RegisterFlagCompletionFunc("window", completeWindows)
	_ = cmd.RegisterFlagCompletionFunc("sort", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{matching.SortByDate, matching.SortBySalaryHigh, matching.SortBySalaryLow, matching.SortByCompany},
			cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
