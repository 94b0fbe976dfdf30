package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := fmt.Errorf("saving: %w", &APIError{Method: "PUT", Path: "/api/queue/1", Status: 422, Detail: "category_id: field required"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "category_id: field required", Describe(err))
	assert.Contains(t, err.Error(), "PUT /api/queue/1: 422")

	assert.True(t, IsNotFound(&APIError{Status: http.StatusNotFound}))
	assert.False(t, IsNotFound(&APIError{Status: http.StatusBadRequest}))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", ErrNotFound)))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"user error", NewUserError("pick a category", errors.New("boom")), "pick a category"},
		{"api without detail", &APIError{Status: 500}, "server returned 500"},
		{"transport", fmt.Errorf("%w: dial tcp", ErrTransport), "cannot reach the expense server"},
		{"plain", ErrMergeNeedsTwo, ErrMergeNeedsTwo.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(fmt.Errorf("discard: %w", ErrCancelled)))
	assert.True(t, IsCancelled(context.Canceled))
	assert.False(t, IsCancelled(ErrBusy))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{Status: 503}))
	assert.True(t, IsRetryable(&APIError{Status: 429}))
	assert.False(t, IsRetryable(&APIError{Status: 422}))
	assert.True(t, IsRetryable(ErrTransport))
	assert.False(t, IsRetryable(errors.New("other")))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
}

func TestWithRetry(t *testing.T) {
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return ErrTransport
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &APIError{Status: 400}
		}, opts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		err := WithRetry(context.Background(), func() error { return ErrTransport }, opts)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("honors context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return ErrTransport }, RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMatchRegex(t *testing.T) {
	ok, err := MatchRegex(`^TESCO`, "TESCO STORES")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MatchRegex(`^TESCO`, "SAINSBURY")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = MatchRegex(`(`, "x")
	assert.Error(t, err)
}
