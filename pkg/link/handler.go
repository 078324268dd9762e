package link

import (
	"context"
	"time"

	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

// Handler serves the payload side of cycles.
type Handler interface {
	// ImageFor provides the image to send when the device reads.
	ImageFor(context.Context, *proto.Request) (*pixel.Buffer, error)
	// Received consumes the image the device wrote.
	Received(context.Context, *proto.Request, *pixel.Buffer) error
}

// CycleResult describes a finished cycle.
type CycleResult struct {
	Request *proto.Request
	// Image is the decoded image for device writes, the source image for device reads.
	Image    *pixel.Buffer
	Bytes    int
	Started  time.Time
	Duration time.Duration
	Err      error
}

// CycleNotifier is called when a cycle finishes, successfully or not.
type CycleNotifier interface {
	CycleDone(context.Context, *CycleResult)
}

// CycleDoneFunc is func type of CycleNotifier.
type CycleDoneFunc func(context.Context, *CycleResult)

// CycleDone implements CycleNotifier.
func (f CycleDoneFunc) CycleDone(ctx context.Context, r *CycleResult) {
	f(ctx, r)
}

// StateNotifier is called when the engine state changes.
type StateNotifier interface {
	StateChanged(context.Context, State)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, State)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state State) {
	f(ctx, state)
}

// State is the state of the transfer engine.
type State int

// States.
const (
	StateIdle State = iota
	StateAwaitingHeader
	StateHeaderDecoded
	StateReading
	StateWriting
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingHeader:
		return "awaiting header"
	case StateHeaderDecoded:
		return "header decoded"
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	}
	return "unknown"
}
