package kamereon

import (
	"fmt"

	"github.com/carlink-io/carlink/api"
)

// ErrorMap classifies remote error codes against the api sentinels. The code
// values are provider-defined and have changed between gateway revisions, so
// the mapping is data rather than code. Unmapped codes stay transient.
var ErrorMap = map[string]error{
	"err.func.403":              api.ErrAccessDenied, // "Access is denied for this resource"
	"err.tech.501":              api.ErrNotSupported, // "This feature is not technically supported by this gateway"
	"err.func.wired.overloaded": api.ErrMustRetry,    // quota exceeded
}

// Error is a remote kamereon error
type Error struct {
	Code    string `json:"errorCode"`
	Message string `json:"errorMessage"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("kamereon: %s (%s)", e.Code, e.Message)
}

// Unwrap exposes the sentinel classification of the error code
func (e *Error) Unwrap() error {
	return ErrorMap[e.Code]
}

type errorsResponse struct {
	Errors []Error `json:"errors"`
}

// error returns the first remote error of the response, if any
func (res *errorsResponse) error() error {
	if len(res.Errors) == 0 {
		return nil
	}
	return &res.Errors[0]
}
