package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svcaudit/internal/config"
	"svcaudit/internal/pipeline"
	"svcaudit/internal/statestore"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the verdict and findings for the last checkpointed run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}

			store := statestore.NewStore(cfg.StatePath)
			state, err := store.Load()
			if err != nil {
				return err
			}
			if state == nil {
				return fmt.Errorf("no checkpointed state found at %s", cfg.StatePath)
			}

			result := pipeline.RunResult{State: state, GoodEnough: pipeline.GoodEnough(state)}
			printVerdict(cmd.OutOrStdout(), result)
			os.Exit(exitCodeForResult(result))
			return nil
		},
	}
}
