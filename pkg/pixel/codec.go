package pixel

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/robotalks/imglink/pkg/proto"
)

// SizeError indicates a payload whose length doesn't match the request.
type SizeError struct {
	Want int
	Got  int
}

// Error implements error.
func (e *SizeError) Error() string {
	return fmt.Sprintf("payload size mismatch: want %d bytes, got %d", e.Want, e.Got)
}

// Decode converts a received payload into a Buffer.
// Grayscale decodes to one channel; RGB565 and RGB888 decode to R, G, B.
// The payload is copied, never retained.
func Decode(req *proto.Request, payload []byte) (*Buffer, error) {
	return decode(req, payload, false)
}

// DecodeOwned is Decode taking ownership of payload: Grayscale and RGB888
// buffers use it as Pix without copying.
func DecodeOwned(req *proto.Request, payload []byte) (*Buffer, error) {
	return decode(req, payload, true)
}

func decode(req *proto.Request, payload []byte, owned bool) (*Buffer, error) {
	size, err := req.PayloadSize()
	if err != nil {
		return nil, err
	}
	if len(payload) != size {
		return nil, &SizeError{Want: size, Got: len(payload)}
	}
	h, w := int(req.Height), int(req.Width)
	switch req.Format {
	case proto.Grayscale, proto.RGB888:
		channels := req.Format.Channels()
		if owned {
			return &Buffer{Height: h, Width: w, Channels: channels, Pix: payload}, nil
		}
		b := New(h, w, channels)
		copy(b.Pix, payload)
		return b, nil
	case proto.RGB565:
		b := New(h, w, 3)
		for i, j := 0, 0; j < len(payload); i, j = i+3, j+2 {
			b.Pix[i], b.Pix[i+1], b.Pix[i+2] = Unpack565(proto.ByteOrder.Uint16(payload[j:]))
		}
		return b, nil
	}
	return nil, errors.Wrapf(proto.ErrUnknownFormat, "format %d", byte(req.Format))
}

// Encode converts src into the payload the request asks for: src is resized
// to the requested dimensions, then converted to the requested format.
// The result carries no framing.
func Encode(req *proto.Request, src *Buffer) ([]byte, error) {
	size, err := req.PayloadSize()
	if err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	img := Resize(src, int(req.Height), int(req.Width))
	switch req.Format {
	case proto.Grayscale:
		if !img.IsGray() {
			img = img.Gray()
		}
		return img.Pix, nil
	case proto.RGB888:
		if img.IsGray() {
			img = img.RGB()
		}
		return img.Pix, nil
	case proto.RGB565:
		out := make([]byte, size)
		if img.IsGray() {
			for i, v := range img.Pix {
				proto.ByteOrder.PutUint16(out[i*2:], Pack565(v, v, v))
			}
			return out, nil
		}
		for i, j := 0, 0; i < len(out); i, j = i+2, j+3 {
			proto.ByteOrder.PutUint16(out[i:], Pack565(img.Pix[j], img.Pix[j+1], img.Pix[j+2]))
		}
		return out, nil
	}
	return nil, errors.Wrapf(proto.ErrUnknownFormat, "format %d", byte(req.Format))
}
