package builder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"

	"svcaudit/internal/statestore"
	"svcaudit/pkg/logging"
)

const subsystem = "BuilderRunner"

// execCommandContext is a package var so tests can substitute a fake
// builder process.
var execCommandContext = exec.CommandContext

// BuilderInterpreter and BuilderModule name the opaque external builder
// program: "<interpreter> -m <module> --cwd <cwd> --depth <depth>".
var (
	BuilderInterpreter = "python3"
	BuilderModule      = "agent_team.builder"
)

// GraceKillWindow is how long InvokeBuilder waits after SIGTERM before
// escalating to SIGKILL. Every timeout path uses this graceful-then-hard-kill
// sequence — no inconsistent direct-kill paths.
var GraceKillWindow = 5 * time.Second

// Invocation describes one builder subprocess launch.
type Invocation struct {
	Cwd         string
	Depth       string
	Timeout     time.Duration
	EnvOverride map[string]string // nil: inherit and filter the process environment
}

// stateFilePath is the builder's observable output contract.
func stateFilePath(cwd string) string {
	return filepath.Join(cwd, ".agent-team", "STATE.json")
}

// InvokeBuilder spawns one builder subprocess: filters secrets from the
// environment, runs to completion or timeout (graceful
// terminate then hard kill, no orphaned children on any exit path), and
// merges process metadata with the builder's STATE.json into a single
// BuilderResult. It never panics — process failures become
// BuilderResult.Success=false.
func InvokeBuilder(ctx context.Context, inv Invocation) statestore.BuilderResult {
	start := time.Now()
	serviceName := filepath.Base(inv.Cwd)

	env := inv.EnvOverride
	if env == nil {
		env = processEnvToMap(os.Environ())
	}
	filtered, removedKeys := FilterSecretEnv(env)

	logging.Audit(logging.AuditEvent{
		Action:  "subprocess_spawn",
		Outcome: "attempted",
		Target:  serviceName,
		Details: fmt.Sprintf("filtered secret env keys: %v", removedKeys),
	})

	args := []string{"-m", BuilderModule, "--cwd", inv.Cwd, "--depth", inv.Depth}
	cmd := execCommandContext(ctx, BuilderInterpreter, args...)
	cmd.Env = envMapToSlice(filtered)
	cmd.Dir = inv.Cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := runWithTimeout(cmd, inv.Timeout, serviceName)

	result := ParseBuilderState(stateFilePath(inv.Cwd))
	result.ServiceName = serviceName
	result.ExitCode = exitCode
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.DurationS = time.Since(start).Seconds()

	return result
}

// runWithTimeout starts cmd and waits up to timeout. On timeout it sends
// SIGTERM, waits up to GraceKillWindow for exit, then sends SIGKILL. It
// always reaps the process before returning — this is the central
// orphan-prevention invariant. Returns the process exit code, or -1 if the
// process never ran, timed out, or was killed.
func runWithTimeout(cmd *exec.Cmd, timeout time.Duration, serviceName string) int {
	if err := cmd.Start(); err != nil {
		logging.Error(subsystem, err, "failed to start builder subprocess for %s", serviceName)
		return -1
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if timeout <= 0 {
		timeout = 24 * time.Hour
	}

	select {
	case err := <-done:
		if err != nil {
			logging.Warn(subsystem, "builder %s exited with error: %v", serviceName, err)
			if cmd.ProcessState != nil {
				return cmd.ProcessState.ExitCode()
			}
			return -1
		}
		return cmd.ProcessState.ExitCode()

	case <-time.After(timeout):
		logging.Warn(subsystem, "builder %s exceeded timeout %s, sending SIGTERM", serviceName, timeout)
		_ = cmd.Process.Signal(syscall.SIGTERM)

		select {
		case <-done:
			logging.Info(subsystem, "builder %s terminated gracefully after SIGTERM", serviceName)
		case <-time.After(GraceKillWindow):
			logging.Warn(subsystem, "builder %s still running after grace window, sending SIGKILL", serviceName)
			_ = cmd.Process.Kill()
			<-done
		}
		return -1
	}
}

// RunParallelBuilders invokes each Invocation, bounded to maxConcurrent
// concurrent subprocesses via a weighted semaphore. Results are returned in
// input order regardless of completion order. A failed/timed-out builder
// does not abort its peers.
func RunParallelBuilders(ctx context.Context, invocations []Invocation, maxConcurrent int) []statestore.BuilderResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]statestore.BuilderResult, len(invocations))
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var wg sync.WaitGroup

	for i, inv := range invocations {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled before a slot freed up; record as a failed
			// invocation rather than blocking forever.
			results[i] = statestore.BuilderResult{ServiceName: filepath.Base(inv.Cwd), Success: false, ExitCode: -1, Health: "unknown"}
			continue
		}

		wg.Add(1)
		go func(i int, inv Invocation) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = InvokeBuilder(ctx, inv)
		}(i, inv)
	}

	wg.Wait()
	return results
}

// FeedViolationsToBuilder writes fix instructions for violations into cwd,
// then invokes the builder in "quick" depth with timeout.
func FeedViolationsToBuilder(ctx context.Context, cwd string, violations []statestore.ContractViolation, timeout time.Duration) (statestore.BuilderResult, error) {
	if _, err := WriteFixInstructions(cwd, violations, DefaultPriorityOrder); err != nil {
		return statestore.BuilderResult{ServiceName: filepath.Base(cwd), Success: false, ExitCode: -1, Health: "unknown"}, err
	}

	result := InvokeBuilder(ctx, Invocation{Cwd: cwd, Depth: "quick", Timeout: timeout})
	return result, nil
}
