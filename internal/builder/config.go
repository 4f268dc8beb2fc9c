package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MCPConfig is the nested mcp: key recognized by the builder's config.yaml loader.
type MCPConfig struct {
	Enabled bool                   `yaml:"enabled"`
	Servers map[string]interface{} `yaml:"servers"`
}

// Config is the recognized subset of a builder config.yaml. The builder's
// own loader tolerates unknown keys, so additional fields can be layered on
// without breaking forward compatibility.
type Config struct {
	Milestone              string                   `yaml:"milestone"`
	Depth                  string                   `yaml:"depth"`
	E2ETesting             bool                     `yaml:"e2e_testing"`
	PostOrchestrationScans bool                     `yaml:"post_orchestration_scans"`
	ServiceName            string                   `yaml:"service_name"`
	MCP                    MCPConfig                `yaml:"mcp"`
	Contracts              []map[string]interface{} `yaml:"contracts"`
}

// GenerateBuilderConfig writes a config.yaml for serviceName under
// outputDir and returns its path.
func GenerateBuilderConfig(serviceName, outputDir, depth string, contracts []map[string]interface{}, mcpEnabled bool) (string, error) {
	if contracts == nil {
		contracts = []map[string]interface{}{}
	}

	cfg := Config{
		Milestone:              fmt.Sprintf("build-%s", serviceName),
		Depth:                  depth,
		E2ETesting:             true,
		PostOrchestrationScans: true,
		ServiceName:            serviceName,
		MCP: MCPConfig{
			Enabled: mcpEnabled,
			Servers: map[string]interface{}{},
		},
		Contracts: contracts,
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create builder output dir %s: %w", outputDir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal builder config: %w", err)
	}

	path := filepath.Join(outputDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write builder config to %s: %w", path, err)
	}

	return path, nil
}
