package api

import (
	"fmt"
	"net/http"
)

// NetworkError wraps a transport level failure, such as a refused connection or a timeout
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the API answers with a non-2xx status code
type StatusError struct {
	StatusCode int
	// Message is taken from the error body returned by the API when one could be parsed
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
