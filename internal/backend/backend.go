// Package backend selects between the subprocess builder backend (the
// default) and an in-process "agent" backend.
package backend

import (
	"fmt"

	"svcaudit/pkg/logging"
)

// Kind names which execution backend the conductor should use.
type Kind string

const (
	Subprocess Kind = "subprocess"
	Agent      Kind = "agent"
)

// Config controls backend selection.
type Config struct {
	Enabled       bool // agent mode requested
	FallbackToCLI bool // fall back to the subprocess backend if agent mode is unavailable
}

// Select implements the backend selection table.
func Select(cfg Config, cliAvailable bool) (Kind, error) {
	if !cfg.Enabled {
		return Subprocess, nil
	}
	if cliAvailable {
		return Agent, nil
	}
	if cfg.FallbackToCLI {
		logging.Warn("Backend", "agent backend requested but unavailable, falling back to subprocess backend")
		return Subprocess, nil
	}
	return "", fmt.Errorf("agent backend requested and unavailable, and fallback_to_cli is false")
}
