package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var jobsLimitFlag int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Show the export history of a subject",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().IntVarP(&jobsLimitFlag, "limit", "n", 20, "Maximum jobs to show (0 = all)")
}

func runJobs(cmd *cobra.Command, args []string) error {
	a, subject, err := openCatalog()
	if err != nil {
		return err
	}
	defer a.Stop()

	jobs, err := a.Jobs(subject, jobsLimitFlag)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatJobs(subject, jobs))
	return nil
}
