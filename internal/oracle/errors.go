package oracle

import (
	"fmt"
)

// TransportError wraps a network or timeout failure reaching the oracle.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: oracle transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError wraps a response the oracle did return but the engine could
// not decode into the expected structure.
type ResponseError struct {
	Op  string
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: malformed oracle response: %v", e.Op, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// EmptyResultError reports that the oracle returned zero usable records when
// at least one was expected.
type EmptyResultError struct {
	Op string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: oracle returned no usable records", e.Op)
}

// ValidationError reports that the caller supplied input an operation cannot
// work with, such as an empty transaction set.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
