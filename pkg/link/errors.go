package link

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/robotalks/imglink/pkg/proto"
)

var (
	// ErrShortRead indicates the device sent fewer payload bytes than requested.
	ErrShortRead = errors.New("short read")
	// ErrShortWrite indicates the payload couldn't be written completely.
	ErrShortWrite = errors.New("short write")
	// ErrDirection indicates a payload operation that doesn't match the request.
	ErrDirection = errors.New("request direction mismatch")
	// ErrNoImage indicates the handler has no image for a device read.
	ErrNoImage = errors.New("no image to send")
	// ErrClosed indicates the session is closed.
	ErrClosed = errors.New("link closed")
)

// ResyncError reports a header that was dropped for resynchronization.
type ResyncError struct {
	Err error
	// Dropped is the number of bytes discarded with the header.
	Dropped int
}

// Error implements error.
func (e *ResyncError) Error() string {
	return fmt.Sprintf("resync after %d bytes: %v", e.Dropped, e.Err)
}

// Unwrap supports errors.Is.
func (e *ResyncError) Unwrap() error {
	return e.Err
}

// CycleError reports a failed cycle. The session may continue.
type CycleError struct {
	Op      string
	Request *proto.Request
	Want    int
	Got     int
	Err     error
	// Cause is the I/O error behind Err, if any.
	Cause error
}

// Error implements error.
func (e *CycleError) Error() string {
	msg := e.Op
	if e.Request != nil {
		msg += " [" + e.Request.Direction.String() +
			fmt.Sprintf(" %dx%d ", e.Request.Width, e.Request.Height) +
			e.Request.Format.String() + "]"
	}
	if e.Want > 0 {
		msg += fmt.Sprintf(" %d/%d bytes", e.Got, e.Want)
	}
	msg += ": " + e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap supports errors.Is.
func (e *CycleError) Unwrap() error {
	return e.Err
}

// FatalError reports a link failure which ends the session.
type FatalError struct {
	Op   string
	Link string
	Err  error
}

// Error implements error.
func (e *FatalError) Error() string {
	return fmt.Sprintf("link %s %s: %v", e.Link, e.Op, e.Err)
}

// Unwrap supports errors.Is.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsResync indicates a dropped header.
func IsResync(err error) bool {
	var e *ResyncError
	return errors.As(err, &e)
}

// IsCycleFailed indicates a failure limited to one cycle.
func IsCycleFailed(err error) bool {
	var e *CycleError
	return errors.As(err, &e)
}

// IsFatal indicates the session can't continue.
func IsFatal(err error) bool {
	var e *FatalError
	return errors.As(err, &e)
}

// IsTimeout indicates a read which timed out without data.
func IsTimeout(err error) bool {
	return os.IsTimeout(errors.Cause(err))
}

// IsDisconnected indicates the underlying link is gone.
func IsDisconnected(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := portErrorCode(err); ok {
		switch code {
		case serial.PortClosed, serial.PortNotFound, serial.InvalidSerialPort:
			return true
		}
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrClosed)
}

// the serial package returns PortError both by value and by pointer.
func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}
