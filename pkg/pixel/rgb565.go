package pixel

// Pack565 packs a color into RGB565, red in the high bits.
// Low bits of each channel are truncated.
func Pack565(r, g, b byte) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// Unpack565 expands an RGB565 value to 8-bit channels by replicating the
// high bits into the low bits, so 0x1f maps to 0xff.
func Unpack565(v uint16) (r, g, b byte) {
	r5, g6, b5 := byte(v>>11)&0x1f, byte(v>>5)&0x3f, byte(v)&0x1f
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}
