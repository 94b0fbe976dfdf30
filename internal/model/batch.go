package model

import (
	"errors"
	"fmt"
	"strings"
)

// ItemError records why one item of a batch failed.
type ItemError struct {
	Err error
	ID  int
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ID, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// BatchResult is the outcome of a bulk action applied item by item.
type BatchResult struct {
	Action    string
	Succeeded []int
	Failed    []ItemError
	Attempted int
}

// NewBatchResult starts a result for the given action and target count.
func NewBatchResult(action string, attempted int) *BatchResult {
	return &BatchResult{Action: action, Attempted: attempted}
}

// Succeed records a successful item.
func (r *BatchResult) Succeed(id int) {
	r.Succeeded = append(r.Succeeded, id)
}

// Fail records a failed item.
func (r *BatchResult) Fail(id int, err error) {
	r.Failed = append(r.Failed, ItemError{ID: id, Err: err})
}

// OK reports whether every attempted item succeeded.
func (r *BatchResult) OK() bool {
	return len(r.Failed) == 0
}

// Err joins the per-item failures, or returns nil when there were none.
func (r *BatchResult) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Summary is a one-line human description of the result.
func (r *BatchResult) Summary() string {
	verb := r.Action
	if verb == "" {
		verb = "updated"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d of %d", verb, len(r.Succeeded), r.Attempted)
	if n := len(r.Failed); n > 0 {
		fmt.Fprintf(&b, ", %d failed (%v)", n, r.Failed[0].Err)
	}
	return b.String()
}
