package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedOperation indicates a queue row requests an unknown operation code.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// Authentication Errors.

	// ErrMissingCredentials indicates one of the four credential columns is empty.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrTokenRefreshFailed indicates the refresh token could not be exchanged.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Marketplace Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoCompatibilities indicates the compatibility search returned no vehicles.
	ErrNoCompatibilities = errors.New("no compatibilities found")

	// ErrCategoryNotFound indicates a category path segment matched no node.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrRemoteChanged indicates the listing was modified remotely during an edit.
	ErrRemoteChanged = errors.New("listing changed remotely")
)
