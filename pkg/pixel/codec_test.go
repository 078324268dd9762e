package pixel

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/proto"
)

func randomBuffer(r *rand.Rand, height, width, channels int) *Buffer {
	b := New(height, width, channels)
	r.Read(b.Pix)
	return b
}

func request(dir proto.Direction, height, width uint16, format proto.Format) *proto.Request {
	return &proto.Request{Direction: dir, Height: height, Width: width, Format: format}
}

func TestDecodeGrayscale(t *testing.T) {
	payload := []byte{0, 1, 2, 3, 4, 5}
	b, err := Decode(request(proto.DeviceWrites, 2, 3, proto.Grayscale), payload)
	require.NoError(t, err)
	require.Equal(t, &Buffer{Height: 2, Width: 3, Channels: 1, Pix: payload}, b)
	payload[0] = 9
	require.Equal(t, byte(0), b.Pix[0], "payload must not be aliased")
}

func TestDecodeOwned(t *testing.T) {
	payload := []byte{0, 1, 2, 3, 4, 5}
	b, err := DecodeOwned(request(proto.DeviceWrites, 1, 2, proto.RGB888), payload)
	require.NoError(t, err)
	require.Equal(t, &Buffer{Height: 1, Width: 2, Channels: 3, Pix: payload}, b)
	payload[0] = 9
	require.Equal(t, byte(9), b.Pix[0])

	b, err = DecodeOwned(request(proto.DeviceWrites, 1, 1, proto.RGB565), []byte{0x00, 0xf8})
	require.NoError(t, err)
	require.Equal(t, []byte{255, 0, 0}, b.Pix)

	_, err = DecodeOwned(request(proto.DeviceWrites, 1, 1, proto.Grayscale), []byte{1, 2})
	var serr *SizeError
	require.True(t, errors.As(err, &serr))
}

// 2x2 RGB888 decodes byte for byte, row-major, no channel swap.
func TestDecodeRGB888(t *testing.T) {
	payload := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	b, err := Decode(request(proto.DeviceWrites, 2, 2, proto.RGB888), payload)
	require.NoError(t, err)
	require.Equal(t, 2, b.Height)
	require.Equal(t, 2, b.Width)
	require.Equal(t, 3, b.Channels)
	require.Equal(t, payload, b.Pix)
	require.Equal(t, byte(1), b.At(0, 0, 0))
	require.Equal(t, byte(6), b.At(0, 1, 2))
	require.Equal(t, byte(7), b.At(1, 0, 0))
}

func TestDecodeRGB565(t *testing.T) {
	payload := []byte{
		0x00, 0xf8, // red
		0xe0, 0x07, // green
		0x1f, 0x00, // blue
		0xff, 0xff, // white
	}
	b, err := Decode(request(proto.DeviceWrites, 1, 4, proto.RGB565), payload)
	require.NoError(t, err)
	require.Equal(t, []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 255,
	}, b.Pix)
}

func TestDecodeSizeMismatch(t *testing.T) {
	_, err := Decode(request(proto.DeviceWrites, 2, 2, proto.RGB888), make([]byte, 11))
	var serr *SizeError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, 12, serr.Want)
	require.Equal(t, 11, serr.Got)

	_, err = Decode(request(proto.DeviceWrites, 2, 2, proto.Format(9)), make([]byte, 4))
	require.True(t, errors.Is(err, proto.ErrUnknownFormat))
}

func TestEncodeGrayscaleExactSize(t *testing.T) {
	src := randomBuffer(rand.New(rand.NewSource(1)), 4, 4, 1)
	out, err := Encode(request(proto.DeviceReads, 4, 4, proto.Grayscale), src)
	require.NoError(t, err)
	require.Len(t, out, 16)
	require.Equal(t, src.Pix, out)
}

func TestGrayscaleRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		h, w := r.Intn(40)+1, r.Intn(40)+1
		src := randomBuffer(r, h, w, 1)
		req := request(proto.DeviceReads, uint16(h), uint16(w), proto.Grayscale)
		payload, err := Encode(req, src)
		require.NoError(t, err)
		decoded, err := Decode(req, payload)
		require.NoError(t, err)
		require.Equal(t, src, decoded)
	}
}

func TestRGB888RoundTrip(t *testing.T) {
	src := randomBuffer(rand.New(rand.NewSource(3)), 7, 5, 3)
	req := request(proto.DeviceReads, 7, 5, proto.RGB888)
	payload, err := Encode(req, src)
	require.NoError(t, err)
	decoded, err := Decode(req, payload)
	require.NoError(t, err)
	require.Equal(t, src, decoded)
}

func TestEncodeColorToGrayscale(t *testing.T) {
	src := &Buffer{Height: 1, Width: 4, Channels: 3, Pix: []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		200, 200, 200,
	}}
	out, err := Encode(request(proto.DeviceReads, 1, 4, proto.Grayscale), src)
	require.NoError(t, err)
	require.Equal(t, []byte{76, 150, 29, 200}, out)
}

func TestEncodeGrayscaleToColor(t *testing.T) {
	src := &Buffer{Height: 1, Width: 2, Channels: 1, Pix: []byte{0x10, 0xff}}
	out, err := Encode(request(proto.DeviceReads, 1, 2, proto.RGB888), src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x10, 0x10, 0xff, 0xff, 0xff}, out)

	out, err = Encode(request(proto.DeviceReads, 1, 2, proto.RGB565), src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x82, 0x10, 0xff, 0xff}, out)
}

func TestEncodeRGB565(t *testing.T) {
	src := &Buffer{Height: 1, Width: 3, Channels: 3, Pix: []byte{
		255, 0, 0,
		0, 255, 0,
		0x0f, 0x0f, 0x0f,
	}}
	req := request(proto.DeviceReads, 1, 3, proto.RGB565)
	out, err := Encode(req, src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xf8, 0xe0, 0x07, 0x61, 0x08}, out)

	again, err := Encode(req, src)
	require.NoError(t, err)
	require.Equal(t, out, again)
}

func TestEncodeResizes(t *testing.T) {
	src := New(480, 640, 3)
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	req := request(proto.DeviceReads, 120, 160, proto.RGB565)
	out, err := Encode(req, src)
	require.NoError(t, err)
	require.Len(t, out, 120*160*2)
	v := Pack565(0x80, 0x80, 0x80)
	for i := 0; i < len(out); i += 2 {
		if !assert.Equal(t, v, proto.ByteOrder.Uint16(out[i:])) {
			break
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(request(proto.DeviceReads, 2, 2, proto.Grayscale), &Buffer{Height: 2, Width: 2, Channels: 1})
	require.True(t, errors.Is(err, ErrInvalidBuffer))
	_, err = Encode(request(proto.DeviceReads, 2, 2, proto.Grayscale), nil)
	require.True(t, errors.Is(err, ErrInvalidBuffer))
	_, err = Encode(request(proto.DeviceReads, 65535, 65535, proto.RGB888), New(1, 1, 1))
	require.True(t, errors.Is(err, proto.ErrSizeOverflow))
}
