package apiclient

import (
	"fmt"
)

// APIError is a well-formed failure response from the analysis service.
type APIError struct {
	StatusCode int
	// Message is the server-supplied text, empty when the body carried none.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service returned status %d", e.StatusCode)
	}
	return e.Message
}

// TransportError covers failures to reach the service or to read its reply.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
