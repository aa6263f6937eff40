package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/open-logistics/pkg/mathutil"
)

// RejectedInputError reports a request that failed structural validation.
// It is the only error kind returned by the engines and must reach the
// caller unchanged.
type RejectedInputError struct {
	Op     string
	Field  string
	Reason string
}

func (e *RejectedInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: rejected input: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: rejected input: %s %s", e.Op, e.Field, e.Reason)
}

// Rejectf builds a RejectedInputError for field with a formatted reason.
func Rejectf(op, field, format string, args ...interface{}) *RejectedInputError {
	return &RejectedInputError{Op: op, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err wraps a RejectedInputError.
func IsRejected(err error) bool {
	var rejected *RejectedInputError
	return errors.As(err, &rejected)
}

// RequireHorizon rejects a horizon below one period or above max periods.
func RequireHorizon(op string, horizon, max int) error {
	if horizon < 1 {
		return Rejectf(op, "time_horizon", "must be a positive integer, got %d", horizon)
	}
	if horizon > max {
		return Rejectf(op, "time_horizon", "must be at most %d periods, got %d", max, horizon)
	}
	return nil
}

// RequireQuantity rejects negative, NaN and infinite quantities.
func RequireQuantity(op, field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return Rejectf(op, field, "must be a finite number, got %v", value)
	}
	if value < 0 {
		return Rejectf(op, field, "must be non-negative, got %v", value)
	}
	return nil
}
