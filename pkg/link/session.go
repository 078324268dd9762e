package link

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

// readChunkSize bounds a single payload read.
const readChunkSize = 4096

// Stats counts what happened on a session.
type Stats struct {
	Requests     int
	Cycles       int
	Failed       int
	Resyncs      int
	DroppedBytes int
	BytesIn      int
	BytesOut     int
}

// Session is the state of one open link: the byte source, the most
// recently decoded request and the transfer engine state.
// Notifiers are called with the session locked and must not call back into it.
type Session struct {
	CycleNotifier CycleNotifier
	StateNotifier StateNotifier

	name   string
	src    ByteSource
	parser proto.Parser
	state  State
	last   *proto.Request
	stats  Stats
	buf    [1]byte
	lock   sync.Mutex

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewSession creates a Session on an opened byte source.
func NewSession(src ByteSource, name string) *Session {
	return &Session{name: name, src: src}
}

// Name returns the link identifier.
func (s *Session) Name() string {
	return s.name
}

// State gets the engine state.
func (s *Session) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// LastRequest returns the most recently decoded request.
func (s *Session) LastRequest() *proto.Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.last
}

// Stats returns a snapshot of counters.
func (s *Session) Stats() Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stats
}

// Close closes the byte source. It doesn't wait for the session lock,
// so a blocked read is interrupted and the running cycle fails with a
// FatalError.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.src.Close()
	})
	return err
}

// PollRequest waits for the next request from the device.
// Malformed or truncated headers are logged and skipped. It only fails
// when ctx is done or the link is lost.
func (s *Session) PollRequest(ctx context.Context) (*proto.Request, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pollRequest(ctx)
}

// ReadPayload receives the image of a DeviceWrites request.
func (s *Session) ReadPayload(ctx context.Context, req *proto.Request) (*pixel.Buffer, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	result := s.readPayload(ctx, req)
	s.notifyCycle(ctx, result)
	return result.Image, result.Err
}

// WritePayload sends img, converted for a DeviceReads request.
func (s *Session) WritePayload(ctx context.Context, req *proto.Request, img *pixel.Buffer) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	result := s.writePayload(ctx, req, img)
	s.notifyCycle(ctx, result)
	return result.Err
}

// Cycle runs one full cycle: waits for a request and transfers its payload
// using h. The returned result is nil only if no request was received.
func (s *Session) Cycle(ctx context.Context, h Handler) (*CycleResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	req, err := s.pollRequest(ctx)
	if err != nil {
		return nil, err
	}
	var result *CycleResult
	switch req.Direction {
	case proto.DeviceWrites:
		if result = s.readPayload(ctx, req); result.Err == nil {
			if err := h.Received(ctx, req, result.Image); err != nil {
				result.Err = &CycleError{Op: "handle", Request: req, Err: err}
				s.stats.Cycles--
				s.stats.Failed++
				glog.Errorf("%s: %v", s.name, result.Err)
			}
		}
	case proto.DeviceReads:
		img, err := h.ImageFor(ctx, req)
		if err == nil && img == nil {
			err = ErrNoImage
		}
		if err != nil {
			result = &CycleResult{
				Request: req,
				Started: time.Now(),
				Err:     &CycleError{Op: "source", Request: req, Err: err},
			}
			s.stats.Failed++
			s.setState(ctx, StateIdle)
			glog.Errorf("%s: %v", s.name, result.Err)
		} else {
			result = s.writePayload(ctx, req, img)
		}
	}
	s.notifyCycle(ctx, result)
	return result, result.Err
}

// Run keeps running cycles until ctx is done or the link is lost.
// Failed cycles are logged and reported through CycleNotifier.
func (s *Session) Run(ctx context.Context, h Handler) error {
	for {
		_, err := s.Cycle(ctx, h)
		if err == nil || IsCycleFailed(err) {
			continue
		}
		return err
	}
}

func (s *Session) pollRequest(ctx context.Context) (*proto.Request, error) {
	if s.closed.Load() {
		return nil, &FatalError{Op: "poll", Link: s.name, Err: ErrClosed}
	}
	s.setState(ctx, StateAwaitingHeader)
	for {
		select {
		case <-ctx.Done():
			s.setState(ctx, StateIdle)
			return nil, ctx.Err()
		default:
		}
		n, err := s.src.Read(s.buf[:])
		if err == nil && n == 0 && s.closed.Load() {
			err = ErrClosed
		}
		if err != nil && !IsTimeout(err) {
			s.setState(ctx, StateIdle)
			return nil, &FatalError{Op: "read", Link: s.name, Err: err}
		}
		var pr proto.ParseResult
		if n == 0 {
			glog.V(4).Infof("%s: read timeout in %v", s.name, s.parser.State())
			pr = s.parser.Timeout()
		} else {
			pr = s.parser.Parse(s.buf[0])
		}
		s.stats.DroppedBytes += pr.Dropped
		if pr.Err != nil {
			s.stats.Resyncs++
			glog.Warningf("%s: %v", s.name, &ResyncError{Err: pr.Err, Dropped: pr.Dropped})
			continue
		}
		if req := pr.Request; req != nil {
			s.last = req
			s.stats.Requests++
			s.setState(ctx, StateHeaderDecoded)
			glog.Infof("%s: request type %s, height %d, width %d, format %s",
				s.name, req.Direction, req.Height, req.Width, req.Format)
			return req, nil
		}
	}
}

func (s *Session) readPayload(ctx context.Context, req *proto.Request) *CycleResult {
	result := &CycleResult{Request: req, Started: time.Now()}
	result.Err = s.transfer(ctx, req, proto.DeviceWrites, StateReading, func(size int) error {
		payload, err := s.readFull(size)
		n := len(payload)
		result.Bytes = n
		s.stats.BytesIn += n
		if err != nil {
			return &FatalError{Op: "read", Link: s.name, Err: err}
		}
		if n < size {
			return &CycleError{Op: "read", Request: req, Want: size, Got: n, Err: ErrShortRead}
		}
		img, err := pixel.DecodeOwned(req, payload)
		if err != nil {
			return &CycleError{Op: "decode", Request: req, Err: err}
		}
		result.Image = img
		return nil
	})
	result.Duration = time.Since(result.Started)
	return result
}

func (s *Session) writePayload(ctx context.Context, req *proto.Request, img *pixel.Buffer) *CycleResult {
	result := &CycleResult{Request: req, Image: img, Started: time.Now()}
	result.Err = s.transfer(ctx, req, proto.DeviceReads, StateWriting, func(size int) error {
		payload, err := pixel.Encode(req, img)
		if err != nil {
			return &CycleError{Op: "encode", Request: req, Err: err}
		}
		n, err := s.writeFull(payload)
		result.Bytes = n
		s.stats.BytesOut += n
		if err != nil && IsDisconnected(err) {
			return &FatalError{Op: "write", Link: s.name, Err: err}
		}
		if err != nil || n < size {
			return &CycleError{Op: "write", Request: req, Want: size, Got: n, Err: ErrShortWrite, Cause: err}
		}
		return nil
	})
	result.Duration = time.Since(result.Started)
	return result
}

// transfer runs the payload part of a cycle and accounts for its outcome.
func (s *Session) transfer(ctx context.Context, req *proto.Request, dir proto.Direction, state State, fn func(int) error) error {
	err := s.checkPayloadOp(ctx, req, dir)
	if err == nil {
		var size int
		if size, err = req.PayloadSize(); err != nil {
			err = &CycleError{Op: "size", Request: req, Err: err}
		} else {
			s.setState(ctx, state)
			err = fn(size)
		}
	}
	s.setState(ctx, StateIdle)
	if err != nil {
		s.stats.Failed++
		glog.Errorf("%s: %v", s.name, err)
		return err
	}
	s.stats.Cycles++
	return nil
}

func (s *Session) checkPayloadOp(ctx context.Context, req *proto.Request, dir proto.Direction) error {
	if s.closed.Load() {
		return &FatalError{Op: "transfer", Link: s.name, Err: ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if req == nil || req.Direction != dir {
		return &CycleError{Op: "transfer", Request: req, Err: ErrDirection}
	}
	return nil
}

// readFull reads up to size bytes, stopping early on a read timeout.
// The buffer only grows as bytes arrive.
func (s *Session) readFull(size int) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for buf.Len() < size {
		want := size - buf.Len()
		if want > len(chunk) {
			want = len(chunk)
		}
		m, err := s.src.Read(chunk[:want])
		buf.Write(chunk[:m])
		if err != nil {
			if IsTimeout(err) {
				return buf.Bytes(), nil
			}
			return buf.Bytes(), err
		}
		if m == 0 {
			// timeout
			return buf.Bytes(), nil
		}
	}
	return buf.Bytes(), nil
}

func (s *Session) writeFull(p []byte) (int, error) {
	var n int
	for n < len(p) {
		m, err := s.src.Write(p[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, io.ErrShortWrite
		}
	}
	if d, ok := s.src.(Drainer); ok {
		if err := d.Drain(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *Session) setState(ctx context.Context, state State) {
	if s.state == state {
		return
	}
	s.state = state
	if n := s.StateNotifier; n != nil {
		n.StateChanged(ctx, state)
	}
}

func (s *Session) notifyCycle(ctx context.Context, result *CycleResult) {
	if result.Err == nil {
		glog.Infof("%s: %s done, %d bytes in %v", s.name, result.Request, result.Bytes, result.Duration)
	}
	if n := s.CycleNotifier; n != nil {
		n.CycleDone(ctx, result)
	}
}
