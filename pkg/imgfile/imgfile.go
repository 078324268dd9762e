// Package imgfile loads and saves pixel buffers as image files.
package imgfile

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/robotalks/imglink/pkg/pixel"
	"github.com/robotalks/imglink/pkg/proto"
)

// ErrUnsupportedType indicates a file extension no encoder handles.
var ErrUnsupportedType = errors.New("unsupported image file type")

// Load reads an image file into a buffer. PNG, JPEG, TIFF and BMP are recognized.
func Load(path string) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, kind, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	buf := pixel.FromImage(img)
	glog.V(1).Infof("loaded %s %s %s", path, kind, buf)
	return buf, nil
}

// Save writes buf to path, encoded by the file extension.
func Save(path string, buf *pixel.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var encode func(f *os.File, img image.Image) error
	switch ext {
	case ".png", "":
		encode = func(f *os.File, img image.Image) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File, img image.Image) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 95}) }
	case ".tif", ".tiff":
		encode = func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) }
	case ".bmp":
		encode = func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }
	default:
		return errors.Wrapf(ErrUnsupportedType, "%s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = encode(f, buf.Image()); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// Namer generates descriptive names for received images, like
//   received_001_rgb565.png
type Namer struct {
	Dir    string
	Prefix string

	seq int
}

// Next returns the next file name for an image of format.
func (n *Namer) Next(format proto.Format) string {
	n.seq++
	prefix := n.Prefix
	if prefix == "" {
		prefix = "received"
	}
	name := fmt.Sprintf("%s_%03d_%s.png", prefix, n.seq, strings.ToLower(format.String()))
	return filepath.Join(n.Dir, name)
}

// Save saves buf with the next name and returns the name.
func (n *Namer) Save(format proto.Format, buf *pixel.Buffer) (string, error) {
	name := n.Next(format)
	if err := Save(name, buf); err != nil {
		return "", err
	}
	glog.Infof("saved %s", name)
	return name, nil
}
