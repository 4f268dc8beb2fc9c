package mcpclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallWithSafeDefaultReturnsResultOnFirstSuccess(t *testing.T) {
	calls := 0
	result := callWithSafeDefaultN(context.Background(), "test", "tool", 3, time.Millisecond, "default", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestCallWithSafeDefaultRetriesTransientErrorsThenSucceeds(t *testing.T) {
	calls := 0
	result := callWithSafeDefaultN(context.Background(), "test", "tool", 3, time.Millisecond, "default", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "recovered", nil
	})
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, calls)
}

func TestCallWithSafeDefaultExhaustsRetriesAndReturnsSafeDefault(t *testing.T) {
	calls := 0
	result := callWithSafeDefaultN(context.Background(), "test", "tool", 3, time.Millisecond, "default", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("timeout")
	})
	assert.Equal(t, "default", result)
	assert.Equal(t, 3, calls)
}

func TestCallWithSafeDefaultNeverRetriesNonRetriableError(t *testing.T) {
	calls := 0
	result := callWithSafeDefaultN(context.Background(), "test", "tool", 3, time.Millisecond, "default", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("tool not found")
	})
	assert.Equal(t, "default", result)
	assert.Equal(t, 1, calls)
}

func TestCallWithSafeDefaultNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		callWithSafeDefaultN(context.Background(), "test", "tool", 3, time.Millisecond, map[string]interface{}{}, func(ctx context.Context) (map[string]interface{}, error) {
			return nil, errors.New("broken pipe")
		})
	})
}

func TestIsRetriableClassification(t *testing.T) {
	tests := []struct {
		err       error
		retriable bool
	}{
		{errors.New("connection refused"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("broken pipe"), true},
		{errors.New("tool not found: decompose"), false},
		{errors.New("invalid arguments supplied"), false},
		{errors.New("something unexpected"), true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.retriable, isRetriable(tc.err), tc.err.Error())
	}
}
