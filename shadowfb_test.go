package shadowfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/deepteams/shadowfb/yuy2"
)

var testConv = yuy2.NewConverter(yuy2.BT601)

// testPattern fills the shadow surface with a deterministic RGB565
// gradient that exercises both fast paths and the general case.
func testPattern(s *Surface) {
	b := s.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s.SetPixel565(x, y, uint16(x*7+y*13))
		}
	}
}

func newTestScreen(t *testing.T, width, height int) *Screen {
	t.Helper()
	out := make([]byte, ShadowPitch(width, 16)*height)
	scr, err := NewScreen(Config{
		Width:     width,
		Height:    height,
		Out:       out,
		Converter: testConv,
	})
	if err != nil {
		t.Fatal(err)
	}
	return scr
}

func TestNewScreenValidation(t *testing.T) {
	out := make([]byte, 640*2*480)
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{"odd width", Config{Width: 639, Height: 480, Out: out, Converter: testConv}, ErrBadGeometry},
		{"zero height", Config{Width: 640, Height: 0, Out: out, Converter: testConv}, ErrBadGeometry},
		{"nil converter", Config{Width: 640, Height: 480, Out: out}, ErrNilConverter},
		{"short output", Config{Width: 640, Height: 480, Out: out[:100], Converter: testConv}, ErrBufferSize},
		{"narrow shadow pitch", Config{
			Width: 640, Height: 480, Out: out, Converter: testConv,
			Shadow: make([]byte, 640*2*480), ShadowPitch: 639 * 2,
		}, ErrBadGeometry},
		{"short shadow", Config{
			Width: 640, Height: 480, Out: out, Converter: testConv,
			Shadow: make([]byte, 64), ShadowPitch: 640 * 2,
		}, ErrBufferSize},
		{"ok", Config{Width: 640, Height: 480, Out: out, Converter: testConv}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScreen(tt.cfg)
			if tt.err == nil {
				if err != nil {
					t.Fatalf("NewScreen: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("NewScreen error = %v, want %v", err, tt.err)
			}
		})
	}
}

// Refreshing a full frame must produce, at every macropixel, exactly
// what the conversion kernel produces for the corresponding source pair.
func TestRefreshFullFrame(t *testing.T) {
	scr := newTestScreen(t, 640, 480)
	testPattern(scr.Shadow())
	scr.RefreshAll()

	s := scr.Shadow()
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x += 2 {
			want := testConv.Pack(s.Pixel565(x, y), s.Pixel565(x+1, y))
			off := y*scr.OutPitch() + x*2
			got := binary.BigEndian.Uint32(scr.Out()[off : off+4])
			if got != want {
				t.Fatalf("macropixel (%d, %d) = %#08x, want %#08x", x, y, got, want)
			}
		}
	}
}

func TestRefreshIdempotent(t *testing.T) {
	scr := newTestScreen(t, 64, 32)
	testPattern(scr.Shadow())

	boxes := []Box{{X1: 5, Y1: 3, X2: 40, Y2: 20}, {X1: 0, Y1: 0, X2: 64, Y2: 8}}
	scr.Refresh(boxes)
	first := bytes.Clone(scr.Out())
	scr.Refresh(boxes)
	if !bytes.Equal(first, scr.Out()) {
		t.Error("second refresh with unchanged shadow produced different output")
	}
}

// A damage rectangle {3, 10, 9, 12} must be processed as if clamped to
// even boundaries {2, 10}: columns 2–9 across rows 10–11, and nothing
// else.
func TestRefreshAlignment(t *testing.T) {
	scr := newTestScreen(t, 640, 480)
	testPattern(scr.Shadow())

	scr.Refresh([]Box{{X1: 3, Y1: 10, X2: 9, Y2: 12}})

	s := scr.Shadow()
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x += 2 {
			off := y*scr.OutPitch() + x*2
			got := binary.BigEndian.Uint32(scr.Out()[off : off+4])

			inside := y >= 10 && y < 12 && x >= 2 && x < 10
			if inside {
				want := testConv.Pack(s.Pixel565(x, y), s.Pixel565(x+1, y))
				if got != want {
					t.Fatalf("macropixel (%d, %d) = %#08x, want %#08x", x, y, got, want)
				}
			} else if got != 0 {
				t.Fatalf("macropixel (%d, %d) = %#08x, want untouched zero", x, y, got)
			}
		}
	}
}

func TestRefreshSkippedWhileBlanked(t *testing.T) {
	scr := newTestScreen(t, 64, 32)
	testPattern(scr.Shadow())

	scr.SetBlanked(true)
	scr.Refresh([]Box{{X1: 0, Y1: 0, X2: 64, Y2: 32}})
	for i, b := range scr.Out() {
		if b != 0 {
			t.Fatalf("output byte %d = %#02x while blanked, want 0", i, b)
		}
	}
}

// Active → Blanked → Active with no shadow mutation must restore the
// output surface exactly.
func TestBlankingRoundTrip(t *testing.T) {
	scr := newTestScreen(t, 640, 480)
	testPattern(scr.Shadow())
	scr.RefreshAll()
	before := bytes.Clone(scr.Out())

	scr.SetBlanked(true)
	if bytes.Equal(before, scr.Out()) {
		t.Fatal("blanking did not clear the output surface")
	}
	scr.SetBlanked(false)
	if !bytes.Equal(before, scr.Out()) {
		t.Error("unblanking did not restore the output surface")
	}
}

func TestRestoreIdempotent(t *testing.T) {
	scr := newTestScreen(t, 64, 32)
	testPattern(scr.Shadow())
	scr.RefreshAll()

	scr.Restore()
	cleared := bytes.Clone(scr.Out())
	scr.Restore()
	if !bytes.Equal(cleared, scr.Out()) {
		t.Error("second Restore changed the output surface")
	}
	for i, b := range cleared {
		if b != 0 {
			t.Fatalf("output byte %d = %#02x after Restore, want 0", i, b)
		}
	}

	// Refreshing a torn-down screen is a no-op.
	scr.Refresh([]Box{{X1: 0, Y1: 0, X2: 64, Y2: 32}})
	for i, b := range scr.Out() {
		if b != 0 {
			t.Fatalf("output byte %d = %#02x after refresh on torn-down screen", i, b)
		}
	}
}

func TestSetBlankedAfterRestore(t *testing.T) {
	scr := newTestScreen(t, 64, 32)
	testPattern(scr.Shadow())
	scr.RefreshAll()
	active := bytes.Clone(scr.Out())

	scr.Restore()

	// A torn-down screen ignores unblank requests; only power-on brings
	// it back.
	scr.SetBlanked(false)
	if !scr.Blanked() {
		t.Error("SetBlanked(false) unblanked a torn-down screen")
	}
	for i, b := range scr.Out() {
		if b != 0 {
			t.Fatalf("output byte %d = %#02x after unblank on torn-down screen", i, b)
		}
	}

	scr.SetPower(PowerOn)
	if scr.Blanked() || !bytes.Equal(active, scr.Out()) {
		t.Error("power on did not reactivate and repaint")
	}
}

func TestPowerModes(t *testing.T) {
	scr := newTestScreen(t, 64, 32)
	testPattern(scr.Shadow())
	scr.RefreshAll()
	active := bytes.Clone(scr.Out())

	scr.SetPower(PowerStandby)
	if !scr.Blanked() {
		t.Error("standby did not blank")
	}
	scr.SetPower(PowerOn)
	if scr.Blanked() || !bytes.Equal(active, scr.Out()) {
		t.Error("power on did not restore the active image")
	}

	scr.SetPower(PowerSuspend)
	if !scr.Blanked() {
		t.Error("suspend did not blank")
	}

	scr.SetPower(PowerOff)
	scr.Refresh([]Box{{X1: 0, Y1: 0, X2: 64, Y2: 32}})
	for i, b := range scr.Out() {
		if b != 0 {
			t.Fatalf("output byte %d = %#02x after power off", i, b)
		}
	}

	// Power on after a full teardown reinitializes and repaints.
	scr.SetPower(PowerOn)
	if !bytes.Equal(active, scr.Out()) {
		t.Error("power on after off did not repaint from the shadow surface")
	}
}

// Independent output pitch: a wider output stride must leave the gap
// bytes untouched and place rows correctly.
func TestIndependentPitches(t *testing.T) {
	const w, h = 8, 4
	outPitch := w*2 + 8
	out := make([]byte, outPitch*h)
	for i := range out {
		out[i] = 0xee // sentinel
	}

	scr, err := NewScreen(Config{
		Width: w, Height: h,
		Out: out, OutPitch: outPitch,
		Converter: testConv,
	})
	if err != nil {
		t.Fatal(err)
	}
	testPattern(scr.Shadow())
	scr.RefreshAll()

	s := scr.Shadow()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += 2 {
			off := y*outPitch + x*2
			got := binary.BigEndian.Uint32(out[off : off+4])
			want := testConv.Pack(s.Pixel565(x, y), s.Pixel565(x+1, y))
			if got != want {
				t.Fatalf("macropixel (%d, %d) = %#08x, want %#08x", x, y, got, want)
			}
		}
		for i := y*outPitch + w*2; i < (y+1)*outPitch; i++ {
			if out[i] != 0xee {
				t.Fatalf("row %d: stride gap byte %d overwritten", y, i)
			}
		}
	}
}
