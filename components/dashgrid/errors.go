package dashgrid

import (
	"errors"
	"fmt"
)

var (
	errMissingClient    = errors.New("dashgrid: dashboard client not configured")
	errMissingDashboard = errors.New("dashgrid: dashboard id is required")
	errMissingWidget    = errors.New("dashgrid: widget id is required")
	errGestureActive    = errors.New("dashgrid: another gesture is already active")
	errNoGesture        = errors.New("dashgrid: no gesture in progress")
)

// ValidationError rejects a local mutation (overlap, bounds). Recovered by
// reverting to the last valid state; never persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "dashgrid: " + e.Reason
}

// QuotaExceededError rejects AddWidget past the plan ceiling. Never retried
// automatically; callers surface an upgrade call-to-action.
type QuotaExceededError struct {
	Plan  string
	Limit int
}

func (e *QuotaExceededError) Error() string {
	if e.Plan == "" {
		return fmt.Sprintf("dashgrid: widget quota of %d reached", e.Limit)
	}
	return fmt.Sprintf("dashgrid: widget quota of %d reached for %s plan", e.Limit, e.Plan)
}

// PersistenceError wraps a failed save. The local model is rolled back to the
// last-known server state before this is surfaced.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("dashgrid: %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StreamError wraps a dropped or malformed live connection. Handled internally
// by the synchronizer's reconnect path, never surfaced as blocking.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("dashgrid: stream failed: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is a quota rejection.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// IsValidation reports whether err is a local validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
