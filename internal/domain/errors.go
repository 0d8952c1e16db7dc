package domain

import "errors"

var (
	// ErrValidation marks input that must never reach the store.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups for records that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks operator actions against a message in the wrong state.
	ErrConflict = errors.New("state conflict")
	// ErrStoreUnavailable marks store failures that abort the current operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)
