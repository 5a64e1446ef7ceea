package booking

import (
	"fmt"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

// ErrUpstreamUnavailable is the sentinel for any unreachable upstream; it is
// the same value the shared REST client wraps, so errors.Is works across the
// client and service layers.
var ErrUpstreamUnavailable = rest.ErrUnavailable

// ErrNotFound ends an amend or cancel on a booking that is missing or no
// longer amendable.
var ErrNotFound = rest.ErrNotFound

// FieldError reports contradictory or malformed input on one form field.
// It is always handled at the step boundary, never as a server error.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IncompleteJourneyError reports the first missing field when submission is
// attempted on a journey that has not collected everything it needs.
type IncompleteJourneyError struct {
	Field string
}

func (e *IncompleteJourneyError) Error() string {
	return fmt.Sprintf("journey incomplete: %s is required", e.Field)
}

// RejectedError carries an upstream refusal of a create or amend verbatim.
// Never retried automatically.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("booking rejected (%d): %s", e.StatusCode, e.Message)
}
