package api

import "errors"

// Sentinel errors shared across packages. Remote failures are classified
// against these using errors.Is.
var (
	// ErrInvalidCredentials indicates the identity provider rejected the
	// username/password pair. This is the only login failure a user can fix.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMustRetry indicates a transient fault. The operation should be
	// retried later with unchanged inputs.
	ErrMustRetry = errors.New("must retry")

	// ErrNotSupported indicates the gateway reported the feature as not
	// technically supported for this vehicle. The condition is permanent.
	ErrNotSupported = errors.New("not supported")

	// ErrAccessDenied indicates the contract does not cover the resource.
	// The condition is permanent until the contract changes.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotAvailable indicates no data has been retrieved yet
	ErrNotAvailable = errors.New("not available")

	// ErrTimeout is the error returned when a bounded remote call expires
	ErrTimeout = errors.New("timeout")
)
