// Package pixel converts images between wire formats and in-memory buffers.
package pixel

import (
	"fmt"

	"github.com/pkg/errors"
)

// Buffer is a row-major, channel-interleaved 8-bit image.
// Three channel buffers hold R, G, B in that order.
type Buffer struct {
	Height   int
	Width    int
	Channels int
	Pix      []byte
}

// ErrInvalidBuffer indicates a buffer whose shape doesn't match its data.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// New creates a zeroed Buffer.
func New(height, width, channels int) *Buffer {
	return &Buffer{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]byte, height*width*channels),
	}
}

// Validate checks the shape of the buffer.
func (b *Buffer) Validate() error {
	if b == nil {
		return errors.Wrap(ErrInvalidBuffer, "nil buffer")
	}
	if b.Channels != 1 && b.Channels != 3 {
		return errors.Wrapf(ErrInvalidBuffer, "%d channels", b.Channels)
	}
	if b.Height <= 0 || b.Width <= 0 {
		return errors.Wrapf(ErrInvalidBuffer, "%dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Height*b.Width*b.Channels {
		return errors.Wrapf(ErrInvalidBuffer, "%dx%dx%d with %d bytes",
			b.Width, b.Height, b.Channels, len(b.Pix))
	}
	return nil
}

// IsGray indicates a single channel buffer.
func (b *Buffer) IsGray() bool {
	return b.Channels == 1
}

// Stride returns the bytes per row.
func (b *Buffer) Stride() int {
	return b.Width * b.Channels
}

// At returns channel c of the pixel at row y, column x.
func (b *Buffer) At(y, x, c int) byte {
	return b.Pix[y*b.Stride()+x*b.Channels+c]
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]byte(nil), b.Pix...)
	return &c
}

// Gray returns a single channel copy, using luma for color buffers.
func (b *Buffer) Gray() *Buffer {
	if b.Channels == 1 {
		return b.Clone()
	}
	out := New(b.Height, b.Width, 1)
	for i, j := 0, 0; i < len(out.Pix); i, j = i+1, j+3 {
		out.Pix[i] = Luma(b.Pix[j], b.Pix[j+1], b.Pix[j+2])
	}
	return out
}

// RGB returns a three channel copy, replicating gray values.
func (b *Buffer) RGB() *Buffer {
	if b.Channels == 3 {
		return b.Clone()
	}
	out := New(b.Height, b.Width, 3)
	for i, v := range b.Pix {
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = v, v, v
	}
	return out
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	return fmt.Sprintf("%dx%dx%d", b.Width, b.Height, b.Channels)
}

// Luma computes the BT.601 luma of a color in 16-bit fixed point.
func Luma(r, g, b byte) byte {
	return byte((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}
