package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport signals a network or HTTP failure talking to the search engine.
	ErrTransport = errors.New("search engine transport error")
	// ErrInvalidRequest signals a malformed search state.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrIndexUnavailable signals that the search engine is unreachable or unhealthy.
	ErrIndexUnavailable = errors.New("index unavailable")
)

// TransportError wraps ErrTransport with the engine operation and HTTP status (0 if no response).
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", ErrTransport.Error(), e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrTransport.Error(), e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// NewTransportError creates a transport error for the given engine operation.
func NewTransportError(op string, status int, err error) error {
	return &TransportError{Op: op, Status: status, Err: err}
}
