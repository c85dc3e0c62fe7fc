package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/thoas/go-funk"
)

var (
	// URLEncoding is the urlencoded content type header
	URLEncoding = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

	// JSONEncoding is the JSON content type plus accept header
	JSONEncoding = map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	// AcceptJSON is the JSON accept header
	AcceptJSON = map[string]string{"Accept": "application/json"}
)

// New builds an HTTP request with the given headers applied
func New(method, uri string, body io.Reader, headers ...map[string]string) (*http.Request, error) {
	req, err := http.NewRequest(method, uri, body)
	if err == nil {
		for _, headers := range headers {
			for k, v := range headers {
				req.Header.Set(k, v)
			}
		}
	}

	return req, err
}

// MarshalJSON marshals data into an io.Reader
func MarshalJSON(data interface{}) (io.Reader, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(b), nil
}

// StatusError indicates an unexpected HTTP response code
type StatusError struct {
	resp *http.Response
}

// NewStatusError creates a status error for the given response
func NewStatusError(resp *http.Response) StatusError {
	return StatusError{resp: resp}
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d (%s)", e.resp.StatusCode, http.StatusText(e.resp.StatusCode))
}

// Response returns the original http response
func (e StatusError) Response() *http.Response {
	return e.resp
}

// StatusCode returns the response status code
func (e StatusError) StatusCode() int {
	return e.resp.StatusCode
}

// HasStatus returns true if the response status matches one of the given codes
func (e StatusError) HasStatus(codes ...int) bool {
	return funk.ContainsInt(codes, e.resp.StatusCode)
}

// ReadBody reads the response body and returns a StatusError for non-2xx codes
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return b, StatusError{resp: resp}
	}

	return b, nil
}

// DecodeJSON reads the response body and decodes JSON into res.
// The body is decoded even for non-2xx codes to allow extracting error details.
func DecodeJSON(resp *http.Response, res interface{}) error {
	b, err := ReadBody(resp)
	if len(b) > 0 {
		if jerr := json.Unmarshal(b, res); err == nil {
			err = jerr
		}
	}

	return err
}
