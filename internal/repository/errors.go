package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates the record's state changed since the caller's
	// snapshot; the operation is retryable after a re-fetch.
	ErrConflict = errors.New("repository: state conflict")
)
