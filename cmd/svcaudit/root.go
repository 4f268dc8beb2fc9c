// Package main is the svcaudit CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes. Documented for scripting and CI gating.
const (
	ExitGoodEnough    = 0
	ExitNotGoodEnough = 1
	ExitFatal         = 2
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "svcaudit",
	Short:        "Drive a generated microservice stack through build, deploy, and quality assessment",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "pipeline.yaml", "path to the pipeline config file")
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newReportCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitFatal)
	}
}
