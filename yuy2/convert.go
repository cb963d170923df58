package yuy2

// RGB565 bit layout. The averaging and expansion masks below are derived
// from these, so the arithmetic stays correct if the layout constants are
// ever changed for another 16-bit format.
const (
	redShift, redBits     = 11, 5
	greenShift, greenBits = 5, 6
	blueShift, blueBits   = 0, 5
)

const (
	// carryMask selects the low bit of every channel.
	carryMask = 1<<redShift | 1<<greenShift | 1<<blueShift

	// leakMask selects, in a right-shifted pixel, the bit that received
	// the low bit of the channel above it.
	leakMask = 1<<(redShift+redBits-1) | 1<<(greenShift+greenBits-1) | 1<<(blueShift+blueBits-1)
)

// Black is the macropixel returned for two zero pixels: luma 0 on both
// sides with chroma at the neutral 128. Note the luma is 0, not the
// studio-range 16 the tables produce, matching the reference constant.
const Black uint32 = 0x00800080

// Average565 averages two RGB565 pixels channel by channel, rounding
// down, without letting one channel's carry spill into its neighbour.
// Per channel it computes (a>>1) + (b>>1) + (a&b&1), which equals
// floor((a+b)/2).
func Average565(a, b uint16) uint16 {
	return (a>>1)&^leakMask + (b>>1)&^leakMask + a&b&carryMask
}

// expand565 widens the three RGB565 channels to 8 bits by bit
// replication. Replication maps the channel extremes to exactly 0 and
// 255 and is much cheaper than the exact (v*255)/max scaling.
func expand565(p uint16) (r, g, b int32) {
	r5 := int32(p>>redShift) & (1<<redBits - 1)
	g6 := int32(p>>greenShift) & (1<<greenBits - 1)
	b5 := int32(p>>blueShift) & (1<<blueBits - 1)

	r = r5<<3 | r5>>2
	g = g6<<2 | g6>>4
	b = b5<<3 | b5>>2
	return r, g, b
}

// Converter maps RGB565 pixel pairs to packed YUY2 macropixels through
// three 65536-entry lookup tables, one per target channel, indexed by the
// raw 16-bit pixel value. A Converter is immutable after construction and
// safe for concurrent readers.
type Converter struct {
	y  [1 << 16]uint8
	cb [1 << 16]uint8
	cr [1 << 16]uint8
}

// NewConverter builds the lookup tables for the given color space. The
// per-channel contribution tables are computed first (with the luma and
// chroma biases folded into the green entries), then collapsed into the
// three direct tables over all 65536 pixel values.
func NewConverter(cs ColorSpace) *Converter {
	w := cs.coefficients()

	var rY, gY, bY [256]int32
	var rU, gU, bU [256]int32
	var rV, gV, bV [256]int32
	for i := int32(0); i < 256; i++ {
		rY[i] = w.y[0] * i
		gY[i] = w.y[1]*i + lumaBias<<fixBits
		bY[i] = w.y[2] * i

		rU[i] = w.u[0] * i
		gU[i] = w.u[1]*i + chromaBias<<fixBits
		bU[i] = w.u[2] * i

		rV[i] = w.v[0] * i
		gV[i] = w.v[1]*i + chromaBias<<fixBits
		bV[i] = w.v[2] * i
	}

	c := new(Converter)
	for p := 0; p < 1<<16; p++ {
		r, g, b := expand565(uint16(p))
		c.y[p] = clampU8((rY[r]+gY[g]+bY[b])>>fixBits, lumaMin, lumaMax)
		c.cb[p] = clampU8((rU[r]+gU[g]+bU[b])>>fixBits, chromaMin, chromaMax)
		c.cr[p] = clampU8((rV[r]+gV[g]+bV[b])>>fixBits, chromaMin, chromaMax)
	}
	return c
}

func clampU8(v, lo, hi int32) uint8 {
	if v < lo {
		return uint8(lo)
	}
	if v > hi {
		return uint8(hi)
	}
	return uint8(v)
}

// Pack converts two adjacent RGB565 pixels into one macropixel with byte
// layout [Y_left, Cb, Y_right, Cr] from the most significant byte down.
// Luma is sampled per pixel; the shared chroma pair is sampled once from
// the channel-wise average of the two pixels.
//
// Pack is total over its input domain and never fails.
func (c *Converter) Pack(left, right uint16) uint32 {
	// Black regions dominate typical screen contents.
	if left|right == 0 {
		return Black
	}

	if left == right {
		y := uint32(c.y[left])
		return y<<24 | uint32(c.cb[left])<<16 | y<<8 | uint32(c.cr[left])
	}

	avg := Average565(left, right)
	return uint32(c.y[left])<<24 | uint32(c.cb[avg])<<16 |
		uint32(c.y[right])<<8 | uint32(c.cr[avg])
}

// Luma returns the luma table entry for a single RGB565 pixel.
func (c *Converter) Luma(p uint16) uint8 { return c.y[p] }

// Chroma returns the (Cb, Cr) table entries for a single RGB565 pixel.
func (c *Converter) Chroma(p uint16) (cb, cr uint8) { return c.cb[p], c.cr[p] }
