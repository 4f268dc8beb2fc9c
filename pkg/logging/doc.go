// Package logging provides the structured logging system shared by every
// pipeline component, built on top of log/slog.
//
// # Usage
//
//	import "svcaudit/pkg/logging"
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Conductor", "starting phase %s", phase)
//	logging.Debug("StateStore", "loaded state from %s", path)
//	logging.Warn("HealthProber", "service %s not yet healthy", name)
//	logging.Error("BuilderRunner", err, "invocation failed for %s", service)
//
// # Subsystem tags
//
// Each component logs under its own subsystem tag so output can be filtered
// per component:
//
//   - StateStore
//   - FindingCatalog
//   - HealthProber
//   - MCPClient
//   - BuilderRunner
//   - Backend
//   - Compose
//   - IntegrationTester
//   - QualityGate
//   - FixLoop
//   - Conductor
//
// # Audit events
//
// logging.Audit records security-relevant events — builder subprocess
// spawns (with the names of the filtered secret env keys, never values), MCP
// worker spawns (with the count of env vars passed; their environment is not
// filtered), and budget-termination decisions — as INFO-level entries
// prefixed with "[AUDIT]" so they can be grepped or routed separately from
// ordinary diagnostic output.
package logging
