package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"svcaudit/pkg/logging"
)

const subsystem = "Config"

// Load reads path, applies defaults, and validates that the configured
// build-input roots exist on disk. PipelineConfig is created once at
// process start and never mutated thereafter.
func Load(path string) (*PipelineConfig, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logging.Info(subsystem, "loaded pipeline config from %s", path)
	return &cfg, nil
}

func validate(cfg *PipelineConfig) error {
	required := map[string]string{
		"prd_path":           cfg.PRDPath,
		"contracts_path":     cfg.ContractsPath,
		"builder_output_dir": cfg.BuilderOutputDir,
	}
	for key, p := range required {
		if p == "" {
			return fmt.Errorf("config is missing required path %q", key)
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("configured %s %q does not exist: %w", key, p, err)
		}
	}

	if cfg.MaxConcurrentBuilders <= 0 {
		return fmt.Errorf("max_concurrent_builders must be positive, got %d", cfg.MaxConcurrentBuilders)
	}
	if cfg.MaxBudgetUSD <= 0 {
		return fmt.Errorf("max_budget_usd must be positive, got %f", cfg.MaxBudgetUSD)
	}

	return nil
}
