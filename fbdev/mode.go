// Package fbdev opens Linux framebuffer devices for use as shadowfb
// output surfaces. The supported hardware exposes a packed-pixel
// truecolor framebuffer in one fixed resolution family.
package fbdev

import (
	"errors"
	"fmt"
)

// Errors returned by Open and SetMode.
var (
	ErrUnsupportedMode     = errors.New("fbdev: unsupported mode")
	ErrUnsupportedHardware = errors.New("fbdev: unsupported console hardware")
	ErrUnsupportedPlatform = errors.New("fbdev: not supported on this platform")
)

// Mode is a display mode request.
type Mode struct {
	Width  int
	Height int
	BPP    int
}

// Supported display modes: NTSC and PAL at 16 bits per pixel.
var (
	ModeNTSC = Mode{Width: 640, Height: 480, BPP: 16}
	ModePAL  = Mode{Width: 640, Height: 576, BPP: 16}
)

// Validate reports whether m is one of the supported mode combinations.
func (m Mode) Validate() error {
	if m == ModeNTSC || m == ModePAL {
		return nil
	}
	return fmt.Errorf("%w: %dx%d-%dbpp", ErrUnsupportedMode, m.Width, m.Height, m.BPP)
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d-%dbpp", m.Width, m.Height, m.BPP)
}
