package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"svcaudit/internal/statestore"
)

// priorityHeaders gives each priority its fixed section header text.
var priorityHeaders = map[statestore.FindingPriority]string{
	statestore.P0: "## Priority: P0 (Must Fix)",
	statestore.P1: "## Priority: P1 (Should Fix)",
	statestore.P2: "## Priority: P2 (Nice to Have)",
}

// DefaultPriorityOrder is the render order used by WriteFixInstructions when
// callers don't supply one.
var DefaultPriorityOrder = []statestore.FindingPriority{statestore.P0, statestore.P1, statestore.P2}

// WriteFixInstructions renders violations, grouped by priority, into
// cwd/FIX_INSTRUCTIONS.md and returns its path. Empty priority sections are
// omitted.
func WriteFixInstructions(cwd string, violations []statestore.ContractViolation, priorityOrder []statestore.FindingPriority) (string, error) {
	if priorityOrder == nil {
		priorityOrder = DefaultPriorityOrder
	}

	byPriority := make(map[statestore.FindingPriority][]statestore.ContractViolation)
	for _, v := range violations {
		p := priorityForSeverity(v.NormalizedSeverity())
		byPriority[p] = append(byPriority[p], v)
	}

	var sb strings.Builder
	sb.WriteString("# Fix Instructions\n\n")

	for _, priority := range priorityOrder {
		group := byPriority[priority]
		if len(group) == 0 {
			continue
		}

		header, ok := priorityHeaders[priority]
		if !ok {
			header = fmt.Sprintf("## Priority: %s", priority)
		}
		sb.WriteString(header + "\n\n")

		for _, v := range group {
			sb.WriteString(fmt.Sprintf("### %s: %s\n\n", v.Code, v.Message))
			sb.WriteString(fmt.Sprintf("- Component: %s\n", componentOf(v)))
			sb.WriteString(fmt.Sprintf("- Evidence: %s\n", evidenceOf(v)))
			sb.WriteString(fmt.Sprintf("- Action: %s\n\n", actionFor(v)))
		}
	}

	if err := os.MkdirAll(cwd, 0755); err != nil {
		return "", fmt.Errorf("failed to create builder cwd %s: %w", cwd, err)
	}

	path := filepath.Join(cwd, "FIX_INSTRUCTIONS.md")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write fix instructions to %s: %w", path, err)
	}

	return path, nil
}

func priorityForSeverity(sev statestore.ViolationSeverity) statestore.FindingPriority {
	switch sev {
	case statestore.SeverityCritical:
		return statestore.P0
	case statestore.SeverityError:
		return statestore.P1
	case statestore.SeverityWarning:
		return statestore.P2
	default:
		return statestore.P3
	}
}

func componentOf(v statestore.ContractViolation) string {
	if v.FilePath != "" {
		return v.FilePath
	}
	return v.Service
}

func evidenceOf(v statestore.ContractViolation) string {
	if v.Expected != "" || v.Actual != "" {
		return fmt.Sprintf("expected=%q actual=%q", v.Expected, v.Actual)
	}
	return v.Message
}

func actionFor(v statestore.ContractViolation) string {
	if v.Endpoint != "" {
		return fmt.Sprintf("Fix %s at endpoint %s", v.Code, v.Endpoint)
	}
	return fmt.Sprintf("Fix %s", v.Code)
}
