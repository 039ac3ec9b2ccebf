package service

import "errors"

var (
	// ErrValidation marks malformed or empty input. The caller should re-prompt.
	ErrValidation = errors.New("invalid record")

	// ErrNotFound marks an operation on an id that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPersistence wraps failures of the underlying store. It is never retried here.
	ErrPersistence = errors.New("persistence failure")

	ErrSessionNotFound = errors.New("draft session not found")
)
