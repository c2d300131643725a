package requester

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest covers requests that could not be built: a malformed
	// URL, a missing access token, or a duplicate authorization code.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoData is returned when a response that should carry a body is empty
	ErrNoData = errors.New("no data in response")
)

// NetworkError is a transport-level failure; no HTTP status was received
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a response with a status outside 2xx
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d from %s", e.StatusCode, e.Endpoint)
}

// DecodeError wraps a JSON decoding failure
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status of an HTTPError anywhere in err's chain
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
