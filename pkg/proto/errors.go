package proto

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrIncompleteHeader indicates the stream stalled inside a header.
	ErrIncompleteHeader = errors.New("incomplete header")
	// ErrUnknownDirection indicates an undefined direction code.
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrUnknownFormat indicates an undefined format code.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrZeroDimension indicates a request with zero height or width.
	ErrZeroDimension = errors.New("zero dimension")
	// ErrSizeOverflow indicates the payload size doesn't fit in 32 bits.
	ErrSizeOverflow = errors.New("payload size overflow")
)

// HeaderError describes a rejected header.
type HeaderError struct {
	Err    error
	Header []byte
}

// Error implements error.
func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: header % x", e.Err, e.Header)
}

// Cause returns the underlying reason.
func (e *HeaderError) Cause() error {
	return e.Err
}

// Unwrap supports errors.Is.
func (e *HeaderError) Unwrap() error {
	return e.Err
}
