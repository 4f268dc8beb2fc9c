package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"svcaudit/internal/config"
	"svcaudit/internal/pipeline"
	"svcaudit/internal/statestore"
	"svcaudit/pkg/logging"
)

func loadConductor() (*pipeline.Conductor, *config.PipelineConfig, error) {
	logging.InitForCLI(logging.LevelInfo, os.Stdout)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	store := statestore.NewStore(cfg.StatePath)
	rt := &pipeline.Runtime{Config: cfg}
	conductor := pipeline.NewConductor(store, cfg, pipeline.DefaultPhases(rt))
	return conductor, cfg, nil
}

func exitCodeForResult(result pipeline.RunResult) int {
	switch {
	case result.Fatal:
		return ExitFatal
	case result.GoodEnough:
		return ExitGoodEnough
	default:
		return ExitNotGoodEnough
	}
}

func newRunID() string {
	return uuid.New().String()
}
