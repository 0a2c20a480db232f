package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Infrastructure wraps these so callers can tell a full queue from an
// unreachable one without importing the backend packages.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrQueueFull        = errors.New("queue full")
	ErrTransport        = errors.New("transport failure")
)
