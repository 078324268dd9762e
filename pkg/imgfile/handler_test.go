package imgfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

func TestHandlerSources(t *testing.T) {
	dir, err := os.MkdirTemp("", "imgfile")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	input := pixel.New(2, 2, 1)
	input.Pix[0] = 200
	name := filepath.Join(dir, "input.png")
	require.NoError(t, Save(name, input))

	h := NewHandler(name+", @last", &Namer{Dir: dir, Prefix: "Q1"})
	require.Equal(t, []string{name, LastReceived}, h.Sources)
	ctx := context.Background()
	reads := &proto.Request{Direction: proto.DeviceReads, Height: 2, Width: 2, Format: proto.Grayscale}
	writes := &proto.Request{Direction: proto.DeviceWrites, Height: 2, Width: 2, Format: proto.Grayscale}

	img, err := h.ImageFor(ctx, reads)
	require.NoError(t, err)
	assert.Equal(t, input, img)

	_, err = h.ImageFor(ctx, reads)
	assert.True(t, errors.Is(err, ErrNothingReceived))

	result := pixel.New(2, 2, 1)
	result.Pix[3] = 255
	require.NoError(t, h.Received(ctx, writes, result))
	assert.Equal(t, result, h.Last())
	assert.Equal(t, filepath.Join(dir, "Q1_001_grayscale.png"), h.LastFile)
	_, err = os.Stat(h.LastFile)
	require.NoError(t, err)

	// cycles back to the file, then the received image.
	img, err = h.ImageFor(ctx, reads)
	require.NoError(t, err)
	assert.Equal(t, input, img)
	img, err = h.ImageFor(ctx, reads)
	require.NoError(t, err)
	assert.Equal(t, result, img)
}

func TestHandlerNoSources(t *testing.T) {
	h := NewHandler("", nil)
	assert.Empty(t, h.Sources)
	img, err := h.ImageFor(context.Background(), &proto.Request{Direction: proto.DeviceReads, Height: 1, Width: 1, Format: proto.RGB888})
	assert.NoError(t, err)
	assert.Nil(t, img)
	assert.NoError(t, h.Received(context.Background(), &proto.Request{Format: proto.RGB888}, pixel.New(1, 1, 3)))
}
