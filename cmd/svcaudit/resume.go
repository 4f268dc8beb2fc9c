package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a pipeline run from its last checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			conductor, _, err := loadConductor()
			if err != nil {
				return err
			}

			result, err := conductor.Resume(cmd.Context())
			if err != nil {
				return err
			}

			printVerdict(cmd.OutOrStdout(), result)
			os.Exit(exitCodeForResult(result))
			return nil
		},
	}
}
