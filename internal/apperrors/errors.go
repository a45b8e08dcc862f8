package apperrors

import "errors"

// Operation-level error categories. Row-level import outcomes are captured
// in the per-row result list instead and never cross the batch boundary.
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPersistence       = errors.New("persistence error")
	ErrFetch             = errors.New("fetch error")
)

// IsPermissionDenied reports whether err is a permission failure.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidTransition reports whether err is a rejected lifecycle move.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
