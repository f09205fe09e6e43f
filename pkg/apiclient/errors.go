package apiclient

import (
	"errors"
	"fmt"
)

// ErrEmptyServiceID is returned before any request is made for a blank service id
var ErrEmptyServiceID = errors.New("service id is required")

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	// Detail is the backend's "detail" message, empty when none was sent
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// DecodeError means a 2xx payload did not match the expected schema
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DetailOr returns the backend detail carried by err, or fallback
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
