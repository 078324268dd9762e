package pixel

type areaWeight struct {
	index  int
	weight int
}

// areaWeights maps each of dst output samples to the src samples it covers.
// Coordinates are scaled by dst*src so overlaps are exact integers; the
// weights of each output sample add up to src.
func areaWeights(src, dst int) [][]areaWeight {
	out := make([][]areaWeight, dst)
	for d := range out {
		lo, hi := d*src, (d+1)*src
		for i := lo / dst; i*dst < hi; i++ {
			start, end := i*dst, (i+1)*dst
			if start < lo {
				start = lo
			}
			if end > hi {
				end = hi
			}
			out[d] = append(out[d], areaWeight{index: i, weight: end - start})
		}
	}
	return out
}

// Resize scales the buffer to height x width by area averaging.
// Each output pixel is the mean of the source area it covers, weighted by
// overlap, and rounded to nearest. Equal dimensions produce an exact copy.
func Resize(b *Buffer, height, width int) *Buffer {
	if b.Height == height && b.Width == width {
		return b.Clone()
	}
	out := New(height, width, b.Channels)
	wy, wx := areaWeights(b.Height, height), areaWeights(b.Width, width)
	total := uint64(b.Height) * uint64(b.Width)
	stride := b.Stride()
	sums := make([]uint64, b.Channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := range sums {
				sums[c] = 0
			}
			for _, sy := range wy[y] {
				row := sy.index * stride
				for _, sx := range wx[x] {
					w := uint64(sy.weight) * uint64(sx.weight)
					off := row + sx.index*b.Channels
					for c := range sums {
						sums[c] += w * uint64(b.Pix[off+c])
					}
				}
			}
			off := y*out.Stride() + x*b.Channels
			for c, sum := range sums {
				out.Pix[off+c] = byte((sum + total/2) / total)
			}
		}
	}
	return out
}
