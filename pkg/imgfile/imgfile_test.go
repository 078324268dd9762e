package imgfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

func testImages() []*pixel.Buffer {
	gray := pixel.New(3, 4, 1)
	color := pixel.New(2, 3, 3)
	for i := range gray.Pix {
		gray.Pix[i] = byte(i * 20)
	}
	for i := range color.Pix {
		color.Pix[i] = byte(255 - i*13)
	}
	return []*pixel.Buffer{gray, color}
}

func TestSaveLoad(t *testing.T) {
	dir, err := os.MkdirTemp("", "imgfile")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	for _, ext := range []string{".png", ".tiff"} {
		for _, img := range testImages() {
			name := filepath.Join(dir, img.String()+ext)
			require.NoError(t, Save(name, img))
			loaded, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, img, loaded, name)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir, err := os.MkdirTemp("", "imgfile")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.True(t, os.IsNotExist(err))

	name := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(name, []byte("not an image"), 0644))
	_, err = Load(name)
	assert.Error(t, err)
}

func TestSaveErrors(t *testing.T) {
	dir, err := os.MkdirTemp("", "imgfile")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	err = Save(filepath.Join(dir, "a.webp"), pixel.New(1, 1, 1))
	assert.True(t, errors.Is(err, ErrUnsupportedType))
	err = Save(filepath.Join(dir, "b.png"), &pixel.Buffer{Height: 1, Width: 1, Channels: 1})
	assert.True(t, errors.Is(err, pixel.ErrInvalidBuffer))
	_, err = os.Stat(filepath.Join(dir, "b.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestNamer(t *testing.T) {
	dir, err := os.MkdirTemp("", "imgfile")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	n := &Namer{Dir: dir, Prefix: "Q1"}
	assert.Equal(t, filepath.Join(dir, "Q1_001_grayscale.png"), n.Next(proto.Grayscale))
	name, err := n.Save(proto.RGB565, pixel.New(2, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Q1_002_rgb565.png"), name)
	_, err = os.Stat(name)
	assert.NoError(t, err)

	assert.Equal(t, "received_001_rgb888.png", (&Namer{}).Next(proto.RGB888))
}
