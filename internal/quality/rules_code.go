package quality

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"svcaudit/internal/statestore"
)

// secretPattern matches an assignment to an obviously-named secret field,
// grounded on the same "detect literal credential assignment" shape the
// teacher uses for its own header/token validation (internal/teleport).
var secretPattern = regexp.MustCompile(`(?i)(password|secret|api_key)\s*=\s*["'][^"']+["']`)

func isFixturePath(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "/test/") || strings.Contains(lower, "/fixtures/") ||
		strings.Contains(lower, "_test.") || strings.Contains(lower, "/testdata/")
}

// ScanCodeQuality walks a generated service's source tree and evaluates the
// source-level rules SEC-SCAN-001 and LOG-001. LOG-002 is evaluated by
// ScanRequestLogging, and CORS-001 and the Dockerfile rules separately by
// ScanCORS and ScanDockerfiles since they read different file classes.
func ScanCodeQuality(serviceName, root string) []statestore.ContractViolation {
	var violations []statestore.ContractViolation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if isFixturePath(path) {
			return nil
		}
		if !isSourceFile(path) {
			return nil
		}

		content, readErr := readFileText(path)
		if readErr != nil {
			return nil
		}

		if secretPattern.MatchString(content) {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleSecScan001),
				Severity: severityForRule[RuleSecScan001],
				Service:  serviceName,
				FilePath: path,
				Message:  "hardcoded secret-like assignment found in source",
			})
		}

		if printPattern.MatchString(content) {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleLog001),
				Severity: severityForRule[RuleLog001],
				Service:  serviceName,
				FilePath: path,
				Message:  "print statement found; use structured logging instead",
			})
		}

		return nil
	})

	return violations
}

var printPattern = regexp.MustCompile(`(?m)^\s*print\s*\(`)

func isSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".js", ".ts", ".go", ".rb":
		return true
	default:
		return false
	}
}

// ScanCORS evaluates CORS-001 against a config file's raw contents: the
// CORS origin must not be the literal wildcard "*".
func ScanCORS(serviceName, configPath, content string) []statestore.ContractViolation {
	if strings.Contains(content, `"*"`) && strings.Contains(strings.ToLower(content), "cors") {
		return []statestore.ContractViolation{{
			Code:     string(RuleCORS001),
			Severity: severityForRule[RuleCORS001],
			Service:  serviceName,
			FilePath: configPath,
			Message:  "CORS origin is wildcarded (\"*\")",
		}}
	}
	return nil
}

// RouteLoggingCheck is the per-route input to LOG-002: whether the route's
// handler chain includes request-logging middleware. The route inspector
// that produces this list lives outside this package (it depends on the
// generated service's routing framework); this is the rule evaluation.
type RouteLoggingCheck struct {
	ServiceName string
	Route       string
	HasLogging  bool
}

// ScanRequestLogging evaluates LOG-002 across a service's inspected routes.
func ScanRequestLogging(checks []RouteLoggingCheck) []statestore.ContractViolation {
	var violations []statestore.ContractViolation
	for _, c := range checks {
		if !c.HasLogging {
			violations = append(violations, statestore.ContractViolation{
				Code:     string(RuleLog002),
				Severity: severityForRule[RuleLog002],
				Service:  c.ServiceName,
				Endpoint: c.Route,
				Message:  "route has no request-logging middleware",
			})
		}
	}
	return violations
}

var healthcheckPattern = regexp.MustCompile(`(?im)^\s*HEALTHCHECK\b`)
var latestTagPattern = regexp.MustCompile(`(?im)^\s*FROM\s+\S+:latest\b`)

// ScanDockerfiles evaluates DOCKER-001 and DOCKER-002 against a service's
// Dockerfile contents.
func ScanDockerfiles(serviceName, dockerfilePath, content string) []statestore.ContractViolation {
	var violations []statestore.ContractViolation

	if !healthcheckPattern.MatchString(content) {
		violations = append(violations, statestore.ContractViolation{
			Code:     string(RuleDocker001),
			Severity: severityForRule[RuleDocker001],
			Service:  serviceName,
			FilePath: dockerfilePath,
			Message:  "Dockerfile declares no HEALTHCHECK",
		})
	}

	if latestTagPattern.MatchString(content) {
		violations = append(violations, statestore.ContractViolation{
			Code:     string(RuleDocker002),
			Severity: severityForRule[RuleDocker002],
			Service:  serviceName,
			FilePath: dockerfilePath,
			Message:  "FROM pins the :latest tag",
		})
	}

	return violations
}
