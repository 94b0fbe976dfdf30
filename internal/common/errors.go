// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common application errors.
var (
	// Transport errors.
	ErrTransport = errors.New("request failed")

	// Queue validation errors.
	ErrIncompleteItems  = errors.New("selected items need a merchant and a category before saving")
	ErrMerchantRequired = errors.New("merchant name is required")
	ErrMergeNeedsTwo    = errors.New("select at least two items to merge")
	ErrNoTargets        = errors.New("no items selected")
	ErrBusy             = errors.New("another operation is still running")
	ErrUpdateModeOff    = errors.New("press u to enter update mode first")
	ErrFeatureDisabled  = errors.New("feature is disabled")
	ErrNoDuplicates     = errors.New("no duplicates found")
	ErrSavedDuplicate   = errors.New("saved expenses cannot be changed from the queue")

	// Cancellation is reported when the user declines a confirmation prompt.
	ErrCancelled = errors.New("cancelled")

	// Emulator store errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// APIError is a non-2xx response from the expense API.
type APIError struct {
	Method string
	Path   string
	Detail string
	Status int
}

func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, detail)
}

// IsNotFound reports whether err is an API 404 or a store miss.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsCancelled reports whether err means the user backed out rather than something failing.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Describe renders an error for a status toast: API details are shown
// verbatim, everything else by its message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("server returned %d", apiErr.Status)
	}
	if errors.Is(err, ErrTransport) {
		return "cannot reach the expense server"
	}
	return strings.TrimSpace(err.Error())
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
