package yuy2

import "image"

// YUV -> RGB fixed-point multipliers for the studio-range inverse
// transform. Used by viewers and tests; the hot path only goes the other
// way.
const (
	kYScale = 76284  // 1.164 * (1 << 16)
	kRCr    = 104595 // 1.596 * (1 << 16)
	kGCb    = 25625  // 0.391 * (1 << 16)
	kGCr    = 53281  // 0.813 * (1 << 16)
	kBCb    = 132251 // 2.018 * (1 << 16)
)

// Unpack splits a packed macropixel into its two luma samples and the
// shared chroma pair.
func Unpack(m uint32) (y1, cb, y2, cr uint8) {
	return uint8(m >> 24), uint8(m >> 16), uint8(m >> 8), uint8(m)
}

// YUVToRGB converts one studio-range YUV sample to 8-bit RGB.
func YUVToRGB(y, u, v uint8) (r, g, b uint8) {
	yy := kYScale * (int32(y) - lumaBias)
	cbb := int32(u) - chromaBias
	crr := int32(v) - chromaBias

	r = clip255((yy + kRCr*crr) >> fixBits)
	g = clip255((yy - kGCb*cbb - kGCr*crr) >> fixBits)
	b = clip255((yy + kBCb*cbb) >> fixBits)
	return r, g, b
}

func clip255(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ToRGBA expands a packed YUY2 frame into dst for display. The frame is
// width×height pixels with the given row pitch in bytes; dst must have
// matching dimensions. Macropixel words are stored big-endian so the
// bytes appear in memory as Y0 Cb Y1 Cr.
func ToRGBA(frame []byte, width, height, pitch int, dst *image.RGBA) {
	for y := 0; y < height; y++ {
		src := y * pitch
		out := y * dst.Stride
		for x := 0; x < width; x += 2 {
			p := frame[src : src+4 : src+4]
			y1, cb, y2, cr := p[0], p[1], p[2], p[3]

			r, g, b := YUVToRGB(y1, cb, cr)
			d := dst.Pix[out : out+8 : out+8]
			d[0], d[1], d[2], d[3] = r, g, b, 0xff

			r, g, b = YUVToRGB(y2, cb, cr)
			d[4], d[5], d[6], d[7] = r, g, b, 0xff

			src += 4
			out += 8
		}
	}
}
