package shadowfb

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestShadowPitch(t *testing.T) {
	tests := []struct {
		width, bpp, want int
	}{
		{640, 16, 1280},
		{641, 16, 1284},
		{639, 16, 1280},
		{1, 16, 4},
	}
	for _, tt := range tests {
		if got := ShadowPitch(tt.width, tt.bpp); got != tt.want {
			t.Errorf("ShadowPitch(%d, %d) = %d, want %d", tt.width, tt.bpp, got, tt.want)
		}
	}
}

func TestSurfacePixel565RoundTrip(t *testing.T) {
	s := NewSurface(8, 4)
	values := []uint16{0x0000, 0xffff, 0xf800, 0x07e0, 0x001f, 0x1234}
	for i, v := range values {
		s.SetPixel565(i, 2, v)
	}
	for i, v := range values {
		if got := s.Pixel565(i, 2); got != v {
			t.Errorf("pixel %d = %#04x, want %#04x", i, got, v)
		}
	}
}

func TestSurfaceSetAt(t *testing.T) {
	s := NewSurface(4, 4)
	s.Set(1, 1, color.RGBA{R: 255, A: 255})
	if got := s.Pixel565(1, 1); got != 0xf800 {
		t.Errorf("red stored as %#04x, want 0xf800", got)
	}

	c := s.At(1, 1).(RGB565Color)
	if c.R != 0x1f || c.G != 0 || c.B != 0 {
		t.Errorf("At = %+v, want pure red", c)
	}
	r, g, b, a := c.RGBA()
	if r != 0xff00 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("RGBA = (%#04x, %#04x, %#04x, %#04x)", r, g, b, a)
	}

	// Out of bounds is a silent no-op.
	s.Set(-1, 0, color.White)
	s.Set(4, 0, color.White)
	if s.At(-1, 0).(RGB565Color) != (RGB565Color{}) {
		t.Error("out-of-bounds At should be zero")
	}
}

// Surface must work as a draw.Image target for standard library drawing.
func TestSurfaceDraw(t *testing.T) {
	s := NewSurface(8, 8)
	src := image.NewUniform(color.RGBA{G: 255, A: 255})
	draw.Draw(s, image.Rect(2, 2, 6, 6), src, image.Point{}, draw.Src)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := uint16(0)
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				want = 0x07e0
			}
			if got := s.Pixel565(x, y); got != want {
				t.Fatalf("pixel (%d, %d) = %#04x, want %#04x", x, y, got, want)
			}
		}
	}
}
