// Package compose is the contract-only adapter to the external container
// orchestrator: it produces compose manifest files and drives the
// orchestrator's lifecycle commands, but does not implement merging,
// network topology, or scheduling itself — those are the orchestrator's
// job.
package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"svcaudit/pkg/logging"
)

const subsystem = "Compose"

// execCommandContext is a package var so tests can substitute a fake
// `docker compose` binary.
var execCommandContext = exec.CommandContext

// Network names for the two-network topology: the proxy may only join
// Frontend; data stores, workers, and generated services join Backend; the
// proxy must never join Backend.
const (
	NetworkFrontend = "frontend"
	NetworkBackend  = "backend"
)

// ResourceCeilingMiB is the documented aggregate memory budget for the
// reference deployment (~4.5 GiB).
const ResourceCeilingMiB = 4608

// BuilderOutput names one synthesized service's generated compose fragment.
type BuilderOutput struct {
	ServiceName string
	ComposeFile string // path to the generated service's own docker-compose fragment
}

// manifestService is one entry under the generated-services tier.
type manifestService struct {
	Image       string   `yaml:"image,omitempty"`
	Build       string   `yaml:"build,omitempty"`
	Networks    []string `yaml:"networks"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
}

type manifestDocument struct {
	Version  string                      `yaml:"version"`
	Networks map[string]map[string]bool  `yaml:"networks"`
	Services map[string]manifestService  `yaml:"services"`
}

// GenerateManifest produces the pipeline-overrides tier of the five-tier
// compose layering: it declares the generated services on the Backend
// network, with a depends_on cascade to the worker tier, and
// writes it to outputDir/pipeline-overrides.yaml. Merging this with the
// infrastructure/worker/proxy tiers is the orchestrator's job.
func GenerateManifest(outputDir string, builderOutputs []BuilderOutput) (string, error) {
	doc := manifestDocument{
		Version: "3.8",
		Networks: map[string]map[string]bool{
			NetworkFrontend: {"external": false},
			NetworkBackend:  {"external": false},
		},
		Services: map[string]manifestService{},
	}

	for _, out := range builderOutputs {
		doc.Services[out.ServiceName] = manifestService{
			Build:     filepath.Dir(out.ComposeFile),
			Networks:  []string{NetworkBackend},
			DependsOn: []string{"worker-tier-2"},
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create manifest output dir %s: %w", outputDir, err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal compose manifest: %w", err)
	}

	path := filepath.Join(outputDir, "pipeline-overrides.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write compose manifest to %s: %w", path, err)
	}

	logging.Info(subsystem, "generated manifest for %d services at %s", len(builderOutputs), path)
	return path, nil
}

// composeArgs builds the `-f <path>` flags for each manifest layer.
func composeArgs(manifestPaths []string, sub ...string) []string {
	args := make([]string, 0, len(manifestPaths)*2+len(sub))
	for _, p := range manifestPaths {
		args = append(args, "-f", p)
	}
	return append(args, sub...)
}

// Up brings up every service declared across manifestPaths.
func Up(ctx context.Context, manifestPaths []string) error {
	args := composeArgs(manifestPaths, "up", "-d")
	cmd := execCommandContext(ctx, "docker", append([]string{"compose"}, args...)...)

	logging.Info(subsystem, "starting compose stack: docker compose %s", strings.Join(args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker compose up failed: %w\noutput: %s", err, string(output))
	}
	return nil
}

// HealthCheckResult is the outcome of WaitHealthy.
type HealthCheckResult struct {
	ServicesHealthy []string
	Failures        []string
}

type psEntry struct {
	Service string `json:"Service"`
	Health  string `json:"Health"`
	State   string `json:"State"`
}

// WaitHealthy polls `docker compose ps` until every service reports healthy
// or timeout elapses.
func WaitHealthy(ctx context.Context, manifestPaths []string, timeout time.Duration) (HealthCheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		result, allHealthy, err := psOnce(ctx, manifestPaths)
		if err == nil && allHealthy {
			logging.Info(subsystem, "compose stack healthy: %d services", len(result.ServicesHealthy))
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("compose stack did not become healthy within %s: %d failing", timeout, len(result.Failures))
		case <-ticker.C:
		}
	}
}

func psOnce(ctx context.Context, manifestPaths []string) (HealthCheckResult, bool, error) {
	args := composeArgs(manifestPaths, "ps", "--format", "json")
	cmd := execCommandContext(ctx, "docker", append([]string{"compose"}, args...)...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return HealthCheckResult{}, false, fmt.Errorf("docker compose ps failed: %w", err)
	}

	var entries []psEntry
	decoder := json.NewDecoder(&stdout)
	for decoder.More() {
		var e psEntry
		if err := decoder.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}

	var result HealthCheckResult
	allHealthy := true
	for _, e := range entries {
		if e.Health == "healthy" || (e.Health == "" && e.State == "running") {
			result.ServicesHealthy = append(result.ServicesHealthy, e.Service)
		} else {
			result.Failures = append(result.Failures, e.Service)
			allHealthy = false
		}
	}
	return result, allHealthy && len(entries) > 0, nil
}

// Down tears down the compose stack. It is always invoked in the pipeline's
// terminal cleanup, including on failure paths.
func Down(ctx context.Context, manifestPaths []string) error {
	args := composeArgs(manifestPaths, "down")
	cmd := execCommandContext(ctx, "docker", append([]string{"compose"}, args...)...)

	logging.Info(subsystem, "tearing down compose stack")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker compose down failed: %w\noutput: %s", err, string(output))
	}
	return nil
}
