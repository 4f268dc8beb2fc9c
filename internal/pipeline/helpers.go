package pipeline

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"svcaudit/internal/integration"
	"svcaudit/internal/statestore"
)

// serviceEndpointsFor assigns each decomposed service a deterministic local
// port (8000+index). This mapping is this package's own convention;
// GenerateManifest does not assign or publish these ports.
func serviceEndpointsFor(services []string) []integration.ServiceEndpoint {
	endpoints := make([]integration.ServiceEndpoint, 0, len(services))
	for i, name := range services {
		base := fmt.Sprintf("http://localhost:%d", 8000+i)
		endpoints = append(endpoints, integration.ServiceEndpoint{
			Name:         name,
			OpenAPIURL:   base + "/openapi.json",
			AuthLoginURL: base + "/login",
		})
	}
	return endpoints
}

func findEndpointByNameHint(endpoints []integration.ServiceEndpoint, hints ...string) *integration.ServiceEndpoint {
	for _, hint := range hints {
		for i := range endpoints {
			if strings.Contains(strings.ToLower(endpoints[i].Name), hint) {
				return &endpoints[i]
			}
		}
	}
	return nil
}

func registerURL(endpoints []integration.ServiceEndpoint) string {
	if ep := findEndpointByNameHint(endpoints, "auth"); ep != nil {
		return strings.TrimSuffix(ep.AuthLoginURL, "/login") + "/register"
	}
	return ""
}

func loginURL(endpoints []integration.ServiceEndpoint) string {
	if ep := findEndpointByNameHint(endpoints, "auth"); ep != nil {
		return ep.AuthLoginURL
	}
	return ""
}

func createOrderURL(endpoints []integration.ServiceEndpoint) string {
	if ep := findEndpointByNameHint(endpoints, "order"); ep != nil {
		return strings.TrimSuffix(ep.OpenAPIURL, "/openapi.json") + "/orders"
	}
	return ""
}

func notificationsURL(endpoints []integration.ServiceEndpoint) string {
	if ep := findEndpointByNameHint(endpoints, "notification"); ep != nil {
		return strings.TrimSuffix(ep.OpenAPIURL, "/openapi.json") + "/notifications"
	}
	return ""
}

// stringsFromAny normalizes a decoded JSON list into []string: real MCP
// responses decode generic arrays as []interface{}, while the in-process
// fallback path constructs []string directly.
func stringsFromAny(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func httpClientForFlow() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func safeRatio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func contractPassRateFor(serviceName string, report *integration.IntegrationReport) float64 {
	if report == nil || report.ContractTestsTotal == 0 {
		return 0
	}
	return float64(report.ContractTestsPassed) / float64(report.ContractTestsTotal)
}

func countLines(root string) int {
	total := 0
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		total += strings.Count(string(data), "\n") + 1
		return nil
	})
	return total
}

func countHealthyMCPWorkers(state *statestore.PipelineState) int {
	count := 0
	for _, h := range state.MCPHealth {
		if h.Status == "healthy" {
			count++
		}
	}
	return count
}

func trafficLightFor(score float64) statestore.TrafficLight {
	switch {
	case score >= 80:
		return statestore.Green
	case score >= 50:
		return statestore.Yellow
	default:
		return statestore.Red
	}
}

func countOpen(state *statestore.PipelineState) (openP0, openP1 int) {
	for _, f := range state.Findings {
		if f.Resolution != statestore.Open {
			continue
		}
		switch f.Priority {
		case statestore.P0:
			openP0++
		case statestore.P1:
			openP1++
		}
	}
	return openP0, openP1
}

func meanTestPassRate(state *statestore.PipelineState) float64 {
	if len(state.BuilderResults) == 0 {
		return 0
	}
	var sum float64
	for _, r := range state.BuilderResults {
		sum += safeRatio(r.TestPassed, r.TestTotal)
	}
	return sum / float64(len(state.BuilderResults))
}

func mcpToolCoverage(state *statestore.PipelineState) float64 {
	if len(state.MCPHealth) == 0 {
		return 0
	}
	healthy := countHealthyMCPWorkers(state)
	return float64(healthy) / float64(len(state.MCPHealth))
}

func fixConvergence(state *statestore.PipelineState) float64 {
	if len(state.FixPasses) == 0 {
		return 1 // no fix loop needed is full convergence
	}
	last := state.FixPasses[len(state.FixPasses)-1]
	return 1 - last.RegressionRate
}
