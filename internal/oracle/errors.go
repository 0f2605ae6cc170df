package oracle

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the service answers successfully but
// carries no usable completion text (missing candidates or parts).
var ErrEmptyCompletion = errors.New("oracle: empty completion")

// TransportError wraps a network-level failure. It is fatal to the current
// call; no retries happen at this layer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oracle: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OracleError is a non-success HTTP response from the completion service.
type OracleError struct {
	Status int
	Body   string
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle: request failed: %d - %s", e.Status, e.Body)
}
