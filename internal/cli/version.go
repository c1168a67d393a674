package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information - can be set during build with ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Long:        "Print version information for jobmatch",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "jobmatch version %s\n", Version)
			fmt.Fprintf(opts.stdout, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(opts.stdout, "Build date: %s\n", BuildDate)
		},
	}
}
