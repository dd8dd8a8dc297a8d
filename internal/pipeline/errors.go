package pipeline

import "fmt"

// ValidationError is a malformed batch request. Surfaced before any
// partial work is performed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: %s: %s", e.Field, e.Reason)
}

// ComputationError is a price computation that yielded a negative or
// non-finite result. Fatal to the whole batch, attributed to the exact
// (variant, item) pair.
type ComputationError struct {
	Variant int
	Item    int
	Err     error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("variant %d item %d: price computation failed: %v", e.Variant, e.Item, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// RenderError is one variant's render failure, recovered according to
// the batch failure policy.
type RenderError struct {
	Variant int
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("variant %d: render failed: %v", e.Variant, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// MergeError is a merge failure after at least one successful render.
// Already-produced per-variant artifacts are never rolled back.
type MergeError struct {
	Err error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge failed: %v", e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
