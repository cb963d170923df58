package shadowfb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/deepteams/shadowfb/yuy2"
)

// Errors returned by NewScreen.
var (
	ErrBadGeometry  = errors.New("shadowfb: invalid geometry")
	ErrBufferSize   = errors.New("shadowfb: buffer too small")
	ErrNilConverter = errors.New("shadowfb: nil converter")
)

// Config describes a Screen. Width must be even: the output encoding
// pairs horizontally adjacent pixels into shared-chroma macropixels.
type Config struct {
	Width  int
	Height int

	// Shadow is the RGB565 shadow buffer. If nil, NewScreen allocates
	// one with the default aligned pitch.
	Shadow      []byte
	ShadowPitch int // required when Shadow is non-nil

	// Out is the output buffer in packed YUY2 encoding, typically a
	// mapped framebuffer. The Screen writes into it but never
	// allocates or frees it.
	Out []byte
	// OutPitch is the output row stride in bytes. Zero means "same as
	// the shadow pitch", which is what the original hardware layout
	// used; buffers with a genuinely different stride should set it
	// explicitly.
	OutPitch int

	Converter *yuy2.Converter
}

// Screen re-encodes damaged regions of an RGB565 shadow surface into a
// YUY2 output surface. It also carries the blanking state: while
// blanked, refreshes are no-ops and the output stays zero-filled.
//
// A Screen is not safe for concurrent use; refresh calls are expected
// on the single thread driving the display pipeline.
type Screen struct {
	conv *yuy2.Converter

	shadow      []byte
	shadowPitch int
	out         []byte
	outPitch    int

	width, height int

	blanked bool
	active  bool
}

// NewScreen validates cfg and returns a ready Screen in the Active
// state. The output buffer is not cleared; callers that need a clean
// slate should follow up with RefreshAll.
func NewScreen(cfg Config) (*Screen, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width&1 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGeometry, cfg.Width, cfg.Height)
	}
	if cfg.Converter == nil {
		return nil, ErrNilConverter
	}

	shadow, shadowPitch := cfg.Shadow, cfg.ShadowPitch
	if shadow == nil {
		shadowPitch = ShadowPitch(cfg.Width, 16)
		shadow = make([]byte, shadowPitch*cfg.Height)
	}
	if shadowPitch < cfg.Width*2 {
		return nil, fmt.Errorf("%w: shadow pitch %d", ErrBadGeometry, shadowPitch)
	}
	if minLen(cfg.Width, cfg.Height, shadowPitch) > len(shadow) {
		return nil, fmt.Errorf("%w: shadow %d bytes", ErrBufferSize, len(shadow))
	}

	outPitch := cfg.OutPitch
	if outPitch == 0 {
		outPitch = shadowPitch
	}
	if outPitch < cfg.Width*2 {
		return nil, fmt.Errorf("%w: output pitch %d", ErrBadGeometry, outPitch)
	}
	if minLen(cfg.Width, cfg.Height, outPitch) > len(cfg.Out) {
		return nil, fmt.Errorf("%w: output %d bytes", ErrBufferSize, len(cfg.Out))
	}

	return &Screen{
		conv:        cfg.Converter,
		shadow:      shadow,
		shadowPitch: shadowPitch,
		out:         cfg.Out,
		outPitch:    outPitch,
		width:       cfg.Width,
		height:      cfg.Height,
		active:      true,
	}, nil
}

// minLen is the smallest buffer length that holds height rows of
// width 16-bit pixels at the given pitch.
func minLen(width, height, pitch int) int {
	return (height-1)*pitch + width*2
}

// Shadow returns the shadow buffer as a drawable surface. The view
// shares storage with the Screen.
func (s *Screen) Shadow() *Surface {
	return &Surface{
		Pix:    s.shadow,
		Stride: s.shadowPitch,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
}

// Bounds returns the screen's pixel bounds.
func (s *Screen) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Out returns the output buffer the Screen writes into.
func (s *Screen) Out() []byte { return s.out }

// OutPitch returns the output row stride in bytes.
func (s *Screen) OutPitch() int { return s.outPitch }

// Refresh re-encodes each damaged region from the shadow buffer into
// the output buffer, in sequence order. While the screen is blanked or
// torn down this is a no-op, so blanking stays authoritative over any
// pending damage.
//
// Boxes must lie within the screen bounds; the hot path carries no
// per-rectangle guards beyond slice bounds checks.
func (s *Screen) Refresh(boxes []Box) {
	if s.blanked || !s.active {
		return
	}
	for _, b := range boxes {
		left, right := b.Aligned()
		if right <= left || b.Y2 <= b.Y1 {
			continue
		}

		src := b.Y1*s.shadowPitch + left*2
		dst := b.Y1*s.outPitch + left*2
		for y := b.Y1; y < b.Y2; y++ {
			so, do := src, dst
			for x := left; x < right; x += 2 {
				p := s.shadow[so : so+4 : so+4]
				l := uint16(p[0]) | uint16(p[1])<<8
				r := uint16(p[2]) | uint16(p[3])<<8
				binary.BigEndian.PutUint32(s.out[do:do+4], s.conv.Pack(l, r))
				so += 4
				do += 4
			}
			src += s.shadowPitch
			dst += s.outPitch
		}
	}
}

// RefreshAll repaints the entire visible area from the shadow buffer.
func (s *Screen) RefreshAll() {
	s.Refresh([]Box{{X1: 0, Y1: 0, X2: s.width, Y2: s.height}})
}

// Blanked reports whether the screen is currently blanked.
func (s *Screen) Blanked() bool { return s.blanked }

// SetBlanked moves the screen between the Active and Blanked states.
// Entering Blanked zero-fills the output buffer once; the shadow buffer
// keeps the real image. Leaving Blanked repaints everything from the
// shadow buffer. A torn-down screen ignores SetBlanked; only
// SetPower(PowerOn) reactivates it.
func (s *Screen) SetBlanked(blank bool) {
	if !s.active || s.blanked == blank {
		return
	}
	s.blanked = blank
	if blank {
		s.clearOut()
	} else {
		s.RefreshAll()
	}
}

// Restore blanks the screen and zero-fills the output buffer, marking
// the screen torn down. It is idempotent and safe to call during mode
// teardown; a later SetPower(PowerOn) reactivates the screen.
func (s *Screen) Restore() {
	if !s.active {
		return
	}
	s.active = false
	s.blanked = true
	s.clearOut()
}

func (s *Screen) clearOut() {
	clear(s.out)
}
