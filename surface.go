package shadowfb

import (
	"image"
	"image/color"
)

// ShadowPitch returns the row stride in bytes for a shadow surface of
// the given width and bits per pixel, rounded up to 4-byte alignment.
func ShadowPitch(width, bpp int) int {
	return (width*bpp>>3 + 3) &^ 3
}

const (
	mask5 = 0x1f
	mask6 = 0x3f
)

// RGB565Color is a color in 5-6-5 channel form.
type RGB565Color struct {
	R, G, B uint8
}

func (c RGB565Color) RGBA() (r, g, b, a uint32) {
	// Bit replication to 8 bits, then widening to 16.
	r8 := uint32(c.R<<3 | c.R>>2)
	g8 := uint32(c.G<<2 | c.G>>4)
	b8 := uint32(c.B<<3 | c.B>>2)
	return r8 << 8, g8 << 8, b8 << 8, 0xffff
}

// RGB565Model converts arbitrary colors to RGB565Color.
var RGB565Model = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(RGB565Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB565Color{
		R: uint8(r>>11) & mask5,
		G: uint8(g>>10) & mask6,
		B: uint8(b>>11) & mask5,
	}
})

// Surface is an RGB565 pixel buffer, one little-endian 16-bit value per
// pixel, row-major with an explicit stride. It implements draw.Image so
// standard library image tooling can render into the shadow buffer.
type Surface struct {
	// Pix holds the pixel data. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*2].
	Pix []byte
	// Stride is the distance in bytes between vertically adjacent
	// pixels. It may exceed width*2 for alignment.
	Stride int
	// Rect is the surface's bounds.
	Rect image.Rectangle
}

// NewSurface allocates a surface of the given size with the default
// 4-byte aligned stride.
func NewSurface(width, height int) *Surface {
	pitch := ShadowPitch(width, 16)
	return &Surface{
		Pix:    make([]byte, pitch*height),
		Stride: pitch,
		Rect:   image.Rect(0, 0, width, height),
	}
}

func (s *Surface) Bounds() image.Rectangle { return s.Rect }
func (s *Surface) ColorModel() color.Model { return RGB565Model }

// PixOffset returns the byte index of the first byte of the pixel at
// (x, y).
func (s *Surface) PixOffset(x, y int) int {
	return (y-s.Rect.Min.Y)*s.Stride + (x-s.Rect.Min.X)*2
}

func (s *Surface) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(s.Rect)) {
		return RGB565Color{}
	}
	p := s.Pixel565(x, y)
	return RGB565Color{
		R: uint8(p>>11) & mask5,
		G: uint8(p>>5) & mask6,
		B: uint8(p) & mask5,
	}
}

func (s *Surface) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(s.Rect)) {
		return
	}
	rgb := RGB565Model.Convert(c).(RGB565Color)
	s.SetPixel565(x, y, uint16(rgb.R)<<11|uint16(rgb.G)<<5|uint16(rgb.B))
}

// Pixel565 returns the raw 16-bit value of the pixel at (x, y).
func (s *Surface) Pixel565(x, y int) uint16 {
	n := s.PixOffset(x, y)
	return uint16(s.Pix[n]) | uint16(s.Pix[n+1])<<8
}

// SetPixel565 stores a raw 16-bit value at (x, y) without bounds checks
// beyond the slice's own.
func (s *Surface) SetPixel565(x, y int, p uint16) {
	n := s.PixOffset(x, y)
	s.Pix[n] = uint8(p)
	s.Pix[n+1] = uint8(p >> 8)
}
