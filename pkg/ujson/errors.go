package ujson

import (
	"errors"
	"fmt"
)

// Error kinds wrapped by DecodeError. Use errors.Is to classify a failure.
var (
	ErrSyntax    = errors.New("ujson: syntax error")
	ErrRange     = errors.New("ujson: numeric value out of range")
	ErrDepth     = errors.New("ujson: nesting depth limit reached")
	ErrUTF8      = errors.New("ujson: invalid UTF-8")
	ErrSurrogate = errors.New("ujson: invalid surrogate escape")
	ErrAlloc     = errors.New("ujson: could not reserve memory block")
)

// DecodeError reports where and why decoding stopped.
type DecodeError struct {
	Offset int    // byte position in the input
	Msg    string // human-readable description
	Err    error  // one of the Err* kinds
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ujson: %s at offset %d", e.Msg, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
