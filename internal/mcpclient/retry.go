package mcpclient

import (
	"context"
	"strings"
	"time"

	"svcaudit/pkg/logging"
)

// DefaultMaxAttempts and DefaultBaseDelay implement the tool-call retry
// policy: up to 3 attempts, delay = base * 2^(attempt-1), i.e. 1s after the
// first failed attempt and 2s after the second.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
)

// isRetriable classifies an error: connection/pipe errors, timeouts, and
// transient server errors are retried; "tool not found" and "invalid
// arguments" protocol errors are not.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	nonRetriablePhrases := []string{"tool not found", "invalid argument", "invalid arguments", "unknown tool"}
	for _, phrase := range nonRetriablePhrases {
		if strings.Contains(msg, phrase) {
			return false
		}
	}
	retriablePhrases := []string{"timeout", "broken pipe", "connection", "eof", "context deadline exceeded", "not connected", "transient"}
	for _, phrase := range retriablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	// Unrecognized failures default to retriable: a worker hiccup should not
	// be mistaken for a permanent protocol error.
	return true
}

// callWithSafeDefault implements the "never-throw-to-caller" invariant: it
// retries fn up to maxAttempts times with exponential backoff, and on final
// exhaustion (or a non-retriable error) returns safeDefault instead of an
// error. subsystem/toolName are used only for logging.
func callWithSafeDefault[T any](ctx context.Context, subsystem, toolName string, safeDefault T, fn func(ctx context.Context) (T, error)) T {
	return callWithSafeDefaultN(ctx, subsystem, toolName, DefaultMaxAttempts, DefaultBaseDelay, safeDefault, fn)
}

func callWithSafeDefaultN[T any](ctx context.Context, subsystem, toolName string, maxAttempts int, baseDelay time.Duration, safeDefault T, fn func(ctx context.Context) (T, error)) T {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result
		}
		lastErr = err

		if !isRetriable(err) {
			logging.Warn(subsystem, "tool %s failed non-retriably: %v", toolName, err)
			return safeDefault
		}

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay * time.Duration(1<<(attempt-1))
		logging.Debug(subsystem, "tool %s attempt %d/%d failed (%v), retrying in %s", toolName, attempt, maxAttempts, err, delay)

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = maxAttempts
		case <-time.After(delay):
		}
	}

	logging.Warn(subsystem, "tool %s exhausted retries, returning safe default: %v", toolName, lastErr)
	return safeDefault
}
