package pixel

import (
	"image"
	"image/color"
)

// FromImage copies an image.Image into a Buffer.
// Gray images keep a single channel, anything else becomes R, G, B
// with alpha dropped.
func FromImage(img image.Image) *Buffer {
	r := img.Bounds()
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		b := New(r.Dy(), r.Dx(), 1)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				b.Pix[y*b.Width+x] = color.GrayModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.Gray).Y
			}
		}
		return b
	}
	b := New(r.Dy(), r.Dx(), 3)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
			off := y*b.Stride() + x*3
			b.Pix[off], b.Pix[off+1], b.Pix[off+2] = c.R, c.G, c.B
		}
	}
	return b
}

// Image wraps a copy of the buffer as an image.Image.
func (b *Buffer) Image() image.Image {
	r := image.Rect(0, 0, b.Width, b.Height)
	if b.IsGray() {
		img := image.NewGray(r)
		copy(img.Pix, b.Pix)
		return img
	}
	img := image.NewRGBA(r)
	for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = b.Pix[i], b.Pix[i+1], b.Pix[i+2], 0xff
	}
	return img
}
