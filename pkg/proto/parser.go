package proto

// Parser scans a byte stream for request frames.
// It consumes one byte at a time and never looks back: bytes which can't
// start a frame are dropped. A read timeout between the two marker bytes
// drops the first one, so 'S', timeout, 'T' doesn't match.
type Parser struct {
	state   parseState
	header  [HeaderLen]byte
	recvLen int
}

// SyncState indicates where the parser is relative to a frame.
type SyncState int

const (
	// SyncStateScanning means the parser is looking for a marker.
	SyncStateScanning SyncState = 0
	// SyncStateSynced means a marker was matched.
	SyncStateSynced SyncState = 0x01
	// SyncStateReceiving means bytes of an unfinished frame are pending.
	SyncStateReceiving SyncState = 0x02
)

// IsSynced indicates if a marker has been matched.
func (s SyncState) IsSynced() bool {
	return s&SyncStateSynced != 0
}

// IsReceiving indicates if it's in the middle of a marker or header.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	State   SyncState
	Request *Request
	// Err is set when a complete or truncated header is rejected.
	// The parser is already scanning for the next marker.
	Err error
	// Dropped is the number of bytes discarded by this step.
	Dropped int
}

type parseState int

const (
	stateMarker0 parseState = iota // waiting for first marker byte
	stateMarker1                   // waiting for second marker byte
	stateHeader                    // receiving header fields
)

// State gets the current sync state.
func (p *Parser) State() SyncState {
	switch p.state {
	case stateMarker1:
		return SyncStateScanning | SyncStateReceiving
	case stateHeader:
		return SyncStateSynced | SyncStateReceiving
	}
	return SyncStateScanning
}

// Reset drops any partial frame.
func (p *Parser) Reset() (pr ParseResult) {
	switch p.state {
	case stateMarker1:
		pr.Dropped = 1
	case stateHeader:
		pr.Dropped = MarkerLen + p.recvLen
	}
	p.resync()
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Request, pr.Dropped, pr.Err = p.parseByte(b)
	pr.State = p.State()
	return
}

// Timeout notifies the parser that no byte arrived within the read timeout.
// A half-received marker is dropped quietly, a half-received header is
// reported as ErrIncompleteHeader.
func (p *Parser) Timeout() (pr ParseResult) {
	switch p.state {
	case stateMarker1:
		pr.Dropped = 1
	case stateHeader:
		hdr := make([]byte, p.recvLen)
		copy(hdr, p.header[:p.recvLen])
		pr.Err = &HeaderError{Err: ErrIncompleteHeader, Header: hdr}
		pr.Dropped = MarkerLen + p.recvLen
	}
	p.resync()
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (req *Request, dropped int, err error) {
	switch p.state {
	case stateMarker0:
		if b == Marker0 {
			p.state = stateMarker1
		} else {
			dropped = 1
		}
	case stateMarker1:
		switch b {
		case Marker1:
			p.state, p.recvLen = stateHeader, 0
		case Marker0:
			// drop the previous 'S', this one may start the marker.
			dropped = 1
		default:
			p.resync()
			dropped = 2
		}
	case stateHeader:
		p.header[p.recvLen] = b
		p.recvLen++
		if p.recvLen < HeaderLen {
			return
		}
		p.resync()
		if req, err = DecodeHeader(p.header[:]); err != nil {
			dropped = FrameHeaderLen
		}
	}
	return
}

func (p *Parser) resync() {
	p.state, p.recvLen = stateMarker0, 0
}
