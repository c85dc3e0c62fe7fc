package transport

import "net/http"

// Default returns an http.Transport with default settings
func Default() *http.Transport {
	return http.DefaultTransport.(*http.Transport).Clone()
}

// Decorator executes the decorator on each request before delegating to the base transport
type Decorator struct {
	Decorator func(*http.Request) error
	Base      http.RoundTripper
}

func (t *Decorator) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Decorator(req); err != nil {
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(req)
}

// DecorateHeaders returns a decorator adding the given headers to each request
func DecorateHeaders(headers map[string]string) func(*http.Request) error {
	return func(req *http.Request) error {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nil
	}
}
