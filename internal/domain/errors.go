package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrInvalidResourceID indicates a resource URL has no trailing numeric segment
	ErrInvalidResourceID = errors.New("resource URL has no numeric identifier")

	// ErrInvalidURL indicates a resource URL cannot form a valid request
	ErrInvalidURL = errors.New("invalid resource URL")

	// ErrFetchFailed indicates a network or payload-decode failure
	ErrFetchFailed = errors.New("fetch from remote API failed")

	// ErrPersistFailed indicates a cache write failure (logged, never surfaced)
	ErrPersistFailed = errors.New("cache persist failed")

	// ErrNotFound indicates the requested record is not in the store
	ErrNotFound = errors.New("record not found")
)
