// Package yuy2 converts 16-bit RGB565 pixels to the packed YUY2 (YUYV
// 4:2:2) macropixel format used by luma/chroma framebuffer hardware.
//
// One macropixel is a 32-bit word encoding two horizontally adjacent
// pixels that share a single chroma sample pair. Conversion is driven by
// lookup tables precomputed from fixed-point color-space coefficients.
package yuy2

// Fixed-point precision and studio-range constants. Luma is offset by 16
// and clamped to [16, 235]; chroma is offset by 128 and clamped to
// [16, 240], per conventional limited-range video encoding.
const (
	fixBits = 16 // fixed-point precision

	lumaBias   = 16
	chromaBias = 128

	lumaMin   = 16
	lumaMax   = 235
	chromaMin = 16
	chromaMax = 240
)

// ColorSpace defines the color primaries used to derive the conversion
// coefficients.
type ColorSpace struct {
	Kr float64 // Luma coefficient for red
	Kb float64 // Luma coefficient for blue
}

// Predefined color spaces.
var (
	BT601 = ColorSpace{Kr: 0.2990, Kb: 0.1140}
	BT709 = ColorSpace{Kr: 0.2126, Kb: 0.0722}
)

// weights holds the nine per-channel contribution coefficients in 16-bit
// fixed point: one triple of (r, g, b) weights per target channel.
type weights struct {
	y [3]int32
	u [3]int32
	v [3]int32
}

// toFixed truncates toward zero, matching the integer conversion the
// classic table builders use.
func toFixed(f float64) int32 {
	return int32(f * (1 << fixBits))
}

// coefficients derives the nine fixed-point weights from the color space.
// For BT601 this reproduces the classic set
// (0.299, 0.587, 0.114 / -0.169, -0.331, 0.500 / 0.500, -0.419, -0.081).
func (cs ColorSpace) coefficients() weights {
	kr := cs.Kr
	kb := cs.Kb
	kg := 1.0 - kr - kb
	cb := 0.5 / (1.0 - kb)
	cr := 0.5 / (1.0 - kr)

	// U's blue weight is cb*(1-kb) and V's red weight is cr*(1-kr), both
	// exactly 0.5 by construction. Computed in float64 the product can land
	// just under 0.5 (BT709: 0.49999999999999994) and truncate a step low,
	// so take the exact value.
	half := int32(1) << (fixBits - 1)

	return weights{
		y: [3]int32{toFixed(kr), toFixed(kg), toFixed(kb)},
		u: [3]int32{toFixed(-cb * kr), toFixed(-cb * kg), half},
		v: [3]int32{half, toFixed(-cr * kg), toFixed(-cr * kb)},
	}
}
