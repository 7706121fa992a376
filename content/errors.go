package content

import "errors"

// ErrValidation is returned when input is missing a required field or carries
// a malformed value. The operation is aborted and no state is changed.
var ErrValidation = errors.New("validation error")

// ErrInvariantViolation is returned when an operation would break a structural
// rule of the draft, such as removing its last day.
var ErrInvariantViolation = errors.New("invariant violation")

// ErrNotFound is returned when a post lookup misses.
var ErrNotFound = errors.New("not found")

// ErrDataUnavailable is returned when the static catalog data is absent or
// malformed. Callers degrade to an empty catalog.
var ErrDataUnavailable = errors.New("data unavailable")
