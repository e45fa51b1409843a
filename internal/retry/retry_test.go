package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracksync/internal/errors"
)

func TestDo(t *testing.T) {
	tests := []struct {
		name           string
		maxAttempts    int
		failures       int
		failWith       func() error
		expectedCalls  int
		expectedResult string
		expectError    bool
	}{
		{
			name:           "should return result on first success",
			maxAttempts:    3,
			failures:       0,
			expectedCalls:  1,
			expectedResult: "ok",
		},
		{
			name:           "should retry transient failures until success",
			maxAttempts:    3,
			failures:       2,
			failWith:       func() error { return errors.NewRequestError("GET /issues.json", 500, nil) },
			expectedCalls:  3,
			expectedResult: "ok",
		},
		{
			name:          "should give up after max attempts",
			maxAttempts:   3,
			failures:      5,
			failWith:      func() error { return errors.NewRequestError("GET /issues.json", 500, nil) },
			expectedCalls: 3,
			expectError:   true,
		},
		{
			name:          "should not retry non-retryable errors",
			maxAttempts:   3,
			failures:      5,
			failWith:      func() error { return errors.NewNotFoundError("issue", "42") },
			expectedCalls: 1,
			expectError:   true,
		},
		{
			name:          "should not retry validation errors",
			maxAttempts:   3,
			failures:      5,
			failWith:      func() error { return errors.NewValidationError("bad payload", nil) },
			expectedCalls: 1,
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			calls := 0
			fn := func() (string, error) {
				calls++
				if calls <= tt.failures {
					return "", tt.failWith()
				}
				return "ok", nil
			}

			// Act
			result, err := Do(context.Background(), tt.maxAttempts, fn)

			// Assert
			assert.Equal(t, tt.expectedCalls, calls)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}
		})
	}
}

func TestDo_CancelledContext(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	// Act
	_, err := Do(ctx, 3, func() (int, error) {
		calls++
		return 0, nil
	})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDoWithDelay(t *testing.T) {
	t.Run("should retry with a delay until success", func(t *testing.T) {
		// Arrange
		cfg := Config{MaxAttempts: 3, Delay: time.Millisecond}
		calls := 0

		// Act
		result, err := DoWithDelay(context.Background(), cfg, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.NewRequestError("GET /workspaces", 502, nil)
			}
			return "done", nil
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "done", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("should stop immediately on permanent errors", func(t *testing.T) {
		// Arrange
		cfg := Config{MaxAttempts: 3, Delay: time.Millisecond}
		calls := 0

		// Act
		_, err := DoWithDelay(context.Background(), cfg, func() (string, error) {
			calls++
			return "", errors.NewConflictError("time entry", "42")
		})

		// Assert
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))
	})

	t.Run("should give up after exhausting attempts", func(t *testing.T) {
		// Arrange
		cfg := Config{MaxAttempts: 2, Delay: time.Millisecond}
		calls := 0

		// Act
		_, err := DoWithDelay(context.Background(), cfg, func() (string, error) {
			calls++
			return "", errors.NewRequestError("GET /workspaces", 500, nil)
		})

		// Assert
		assert.Error(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultDelay, cfg.Delay)
}
