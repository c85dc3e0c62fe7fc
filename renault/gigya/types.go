package gigya

import (
	"fmt"

	"github.com/carlink-io/carlink/api"
	"github.com/thoas/go-funk"
)

// Response is the shared gigya response envelope
type Response struct {
	ErrorCode    int         `json:"errorCode"`    // /accounts.login
	ErrorMessage string      `json:"errorMessage"` // /accounts.login
	SessionInfo  SessionInfo `json:"sessionInfo"`  // /accounts.login
	IDToken      string      `json:"id_token"`     // /accounts.getJWT
	Data         Data        `json:"data"`         // /accounts.getAccountInfo
}

type SessionInfo struct {
	CookieValue string `json:"cookieValue"`
}

type Data struct {
	PersonID string `json:"personId"`
}

// credentialErrors are the gigya error codes caused by a bad username/password pair
var credentialErrors = []int{403042, 403044}

// Error is a remote gigya error
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gigya: %d (%s)", e.Code, e.Message)
}

// Unwrap classifies the error against the api sentinels. Credential errors
// are user-correctable, everything else from the identity layer is transient.
func (e *Error) Unwrap() error {
	if funk.ContainsInt(credentialErrors, e.Code) {
		return api.ErrInvalidCredentials
	}
	return api.ErrMustRetry
}

// error converts the response error code into a typed error
func (res *Response) error() error {
	if res.ErrorCode == 0 {
		return nil
	}
	return &Error{Code: res.ErrorCode, Message: res.ErrorMessage}
}
