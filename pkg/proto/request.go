package proto

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Marker bytes start every request frame.
const (
	Marker0 byte = 'S'
	Marker1 byte = 'T'
)

const (
	// MarkerLen is the length of the marker.
	MarkerLen = 2
	// HeaderLen is the length of header fields following the marker.
	HeaderLen = 6
	// FrameHeaderLen is the full length of a request frame.
	FrameHeaderLen = MarkerLen + HeaderLen
	// MaxPayloadSize is the largest payload a request may describe.
	MaxPayloadSize = math.MaxUint32
)

const maxInt = int(^uint(0) >> 1)

// ByteOrder is the order of all multi-byte fields on the wire.
var ByteOrder = binary.LittleEndian

// Direction tells which side sends the payload.
type Direction byte

// Directions.
const (
	// DeviceWrites means the device pushes a payload to the host.
	DeviceWrites Direction = 1
	// DeviceReads means the device expects a payload from the host.
	DeviceReads Direction = 2
)

// IsValid checks if it's a defined direction.
func (d Direction) IsValid() bool {
	return d == DeviceWrites || d == DeviceReads
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DeviceWrites:
		return "MCU Sends Image"
	case DeviceReads:
		return "PC Sends Image"
	}
	return fmt.Sprintf("Direction(%d)", byte(d))
}

// Format is the on-wire pixel format.
type Format byte

// Formats.
const (
	Grayscale Format = 1
	RGB565    Format = 2
	RGB888    Format = 3
)

// IsValid checks if it's a defined format.
func (f Format) IsValid() bool {
	return f >= Grayscale && f <= RGB888
}

// BytesPerPixel returns the wire size of one pixel, 0 if the format is undefined.
func (f Format) BytesPerPixel() int {
	if !f.IsValid() {
		return 0
	}
	return int(f)
}

// Channels returns the channel count of decoded pixels.
func (f Format) Channels() int {
	if f == Grayscale {
		return 1
	}
	return 3
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case Grayscale:
		return "Grayscale"
	case RGB565:
		return "RGB565"
	case RGB888:
		return "RGB888"
	}
	return fmt.Sprintf("Format(%d)", byte(f))
}

// PayloadSize calculates the payload length of an image.
func PayloadSize(height, width uint16, format Format) (uint32, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return 0, errors.Wrapf(ErrUnknownFormat, "format %d", byte(format))
	}
	size := uint64(height) * uint64(width) * uint64(bpp)
	if size > MaxPayloadSize {
		return 0, errors.Wrapf(ErrSizeOverflow, "%dx%d %s needs %d bytes", width, height, format, size)
	}
	return uint32(size), nil
}

// Request describes one pending transfer.
type Request struct {
	Direction Direction
	Height    uint16
	Width     uint16
	Format    Format
}

// NewRequest validates fields and creates a Request.
func NewRequest(dir Direction, height, width uint16, format Format) (*Request, error) {
	if !dir.IsValid() {
		return nil, errors.Wrapf(ErrUnknownDirection, "direction %d", byte(dir))
	}
	if !format.IsValid() {
		return nil, errors.Wrapf(ErrUnknownFormat, "format %d", byte(format))
	}
	if height == 0 || width == 0 {
		return nil, errors.Wrapf(ErrZeroDimension, "%dx%d", width, height)
	}
	return &Request{Direction: dir, Height: height, Width: width, Format: format}, nil
}

// DecodeHeader decodes the header fields following the marker.
func DecodeHeader(b []byte) (*Request, error) {
	if len(b) < HeaderLen {
		return nil, &HeaderError{Err: ErrIncompleteHeader, Header: append([]byte(nil), b...)}
	}
	req, err := NewRequest(
		Direction(b[0]),
		ByteOrder.Uint16(b[1:3]),
		ByteOrder.Uint16(b[3:5]),
		Format(b[5]))
	if err != nil {
		return nil, &HeaderError{Err: errors.Cause(err), Header: append([]byte(nil), b[:HeaderLen]...)}
	}
	return req, nil
}

// PayloadSize returns the payload size. A header may be well-formed and
// still describe a payload too large to transfer, or too large for int
// on 32-bit hosts.
func (r *Request) PayloadSize() (int, error) {
	size, err := PayloadSize(r.Height, r.Width, r.Format)
	if err != nil {
		return 0, err
	}
	if uint64(size) > uint64(maxInt) {
		return 0, errors.Wrapf(ErrSizeOverflow, "%dx%d %s needs %d bytes", r.Width, r.Height, r.Format, size)
	}
	return int(size), nil
}

// Pixels returns the number of pixels.
func (r *Request) Pixels() int {
	return int(r.Height) * int(r.Width)
}

// String implements fmt.Stringer.
func (r *Request) String() string {
	size, err := r.PayloadSize()
	if err != nil {
		return fmt.Sprintf("%s %dx%d %s (oversized)", r.Direction, r.Width, r.Height, r.Format)
	}
	return fmt.Sprintf("%s %dx%d %s (%d bytes)", r.Direction, r.Width, r.Height, r.Format, size)
}

// Bytes returns the encoded frame header, marker included.
func (r *Request) Bytes() []byte {
	b := make([]byte, FrameHeaderLen)
	b[0], b[1] = Marker0, Marker1
	b[2] = byte(r.Direction)
	ByteOrder.PutUint16(b[3:5], r.Height)
	ByteOrder.PutUint16(b[5:7], r.Width)
	b[7] = byte(r.Format)
	return b
}

// WriteTo writes the encoded frame header.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
