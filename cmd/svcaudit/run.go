package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start a fresh pipeline run",
		RunE: func(cmd *cobra.Command, args []string) error {
			conductor, _, err := loadConductor()
			if err != nil {
				return err
			}

			result, err := conductor.Run(cmd.Context(), newRunID())
			if err != nil {
				return err
			}

			printVerdict(cmd.OutOrStdout(), result)
			os.Exit(exitCodeForResult(result))
			return nil
		},
	}
}
