package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBufferValidate(t *testing.T) {
	require.NoError(t, New(2, 3, 1).Validate())
	require.NoError(t, New(2, 3, 3).Validate())
	for _, b := range []*Buffer{
		nil,
		{Height: 2, Width: 2, Channels: 2, Pix: make([]byte, 8)},
		{Height: 0, Width: 2, Channels: 1},
		{Height: 2, Width: 2, Channels: 3, Pix: make([]byte, 4)},
	} {
		require.True(t, errors.Is(b.Validate(), ErrInvalidBuffer), "%v", b)
	}
}

func TestBufferGrayRGB(t *testing.T) {
	gray := &Buffer{Height: 1, Width: 2, Channels: 1, Pix: []byte{7, 9}}
	rgb := gray.RGB()
	require.Equal(t, []byte{7, 7, 7, 9, 9, 9}, rgb.Pix)
	require.Equal(t, gray, rgb.Gray())
	require.Equal(t, gray, gray.Gray())
	require.Equal(t, rgb, rgb.RGB())
	require.Equal(t, "2x1x3", rgb.String())
}

func TestLuma(t *testing.T) {
	require.Equal(t, byte(0), Luma(0, 0, 0))
	require.Equal(t, byte(255), Luma(255, 255, 255))
	require.Equal(t, byte(76), Luma(255, 0, 0))
	require.Equal(t, byte(150), Luma(0, 255, 0))
	require.Equal(t, byte(29), Luma(0, 0, 255))
}

func TestImageConversion(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0], g.Pix[1] = 3, 250
	b := FromImage(g)
	require.Equal(t, &Buffer{Height: 1, Width: 2, Channels: 1, Pix: []byte{3, 250}}, b)
	require.Equal(t, g, b.Image())

	c := image.NewRGBA(image.Rect(0, 0, 1, 2))
	c.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	c.Set(0, 1, color.RGBA{R: 4, G: 5, B: 6, A: 255})
	b = FromImage(c)
	require.Equal(t, &Buffer{Height: 2, Width: 1, Channels: 3, Pix: []byte{1, 2, 3, 4, 5, 6}}, b)
	require.Equal(t, c, b.Image())

	sub := c.SubImage(image.Rect(0, 1, 1, 2))
	require.Equal(t, []byte{4, 5, 6}, FromImage(sub).Pix)
}
