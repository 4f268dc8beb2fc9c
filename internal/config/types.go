// Package config loads the process-wide, read-only PipelineConfig. The
// loader is intentionally thin: no directory-watching or hot-reload
// machinery, since PipelineConfig is created once and never mutated.
package config

import "time"

// PipelineConfig holds everything the conductor needs at process start: the
// three build-input roots, every timeout, concurrency caps, fix-loop
// limits, the budget ceiling, and the builder depth setting.
type PipelineConfig struct {
	// Build-input roots.
	PRDPath          string `yaml:"prd_path"`
	ContractsPath    string `yaml:"contracts_path"`
	BuilderOutputDir string `yaml:"builder_output_dir"`

	// Timeouts.
	HealthPollTimeout     time.Duration `yaml:"health_poll_timeout"`
	HealthPollInterval    time.Duration `yaml:"health_poll_interval"`
	MCPStartupTimeout     time.Duration `yaml:"mcp_startup_timeout"`
	MCPFirstStartTimeout  time.Duration `yaml:"mcp_first_start_timeout"`
	MCPToolCallTimeout    time.Duration `yaml:"mcp_tool_call_timeout"`
	BuilderTimeout        time.Duration `yaml:"builder_timeout"`

	// Concurrency.
	MaxConcurrentBuilders int `yaml:"max_concurrent_builders"`

	// Fix-loop limits.
	MaxFixPasses          int     `yaml:"max_fix_passes"`
	FixEffectivenessFloor float64 `yaml:"fix_effectiveness_floor"`
	RegressionCeiling     float64 `yaml:"regression_rate_ceiling"`

	// Budget.
	MaxBudgetUSD float64 `yaml:"max_budget_usd"`

	// Builder settings.
	BuilderDepth string `yaml:"builder_depth"`

	// MCP worker commands, keyed by worker name (decomposer, contract, codeintel).
	MCPWorkers map[string]MCPWorkerConfig `yaml:"mcp_workers"`

	// Execution backend selection.
	AgentBackendEnabled  bool `yaml:"agent_backend_enabled"`
	AgentBackendFallback bool `yaml:"agent_backend_fallback_to_cli"`

	// StatePath is where the conductor checkpoints PipelineState.
	StatePath string `yaml:"state_path"`

	// InfraHealthEndpoints names the pre-existing infrastructure (data
	// stores, message brokers, proxy) the health_check phase polls before
	// anything else runs, keyed by a human-readable name.
	InfraHealthEndpoints map[string]string `yaml:"infra_health_endpoints"`
}

// MCPWorkerConfig describes how to launch one MCP worker subprocess.
type MCPWorkerConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
}

// defaults are the documented out-of-the-box settings, applied by Load
// before validation so a minimal config file still produces a runnable
// config.
func defaults() PipelineConfig {
	return PipelineConfig{
		HealthPollTimeout:     60 * time.Second,
		HealthPollInterval:    2 * time.Second,
		MCPStartupTimeout:     10 * time.Second,
		MCPFirstStartTimeout:  30 * time.Second,
		MCPToolCallTimeout:    30 * time.Second,
		BuilderTimeout:        10 * time.Minute,
		MaxConcurrentBuilders: 3,
		MaxFixPasses:          5,
		FixEffectivenessFloor: 0.30,
		RegressionCeiling:     0.25,
		MaxBudgetUSD:          50.0,
		BuilderDepth:          "standard",
		AgentBackendFallback:  true,
		StatePath:             "./pipeline-state.json",
	}
}
