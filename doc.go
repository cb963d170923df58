// Package shadowfb synchronizes an RGB565 shadow framebuffer with a
// display whose native pixel encoding is the packed YUY2 luma/chroma
// format.
//
// Display pipelines that can only draw RGB render into an off-screen
// shadow surface; shadowfb re-encodes exactly the damaged regions into
// the output surface on each refresh. The module provides:
//   - Surface: an RGB565 pixel buffer usable as a draw.Image
//   - Screen: the dirty-rectangle refresh scheduler and blanking state
//   - Damage: an accumulator for changed regions between refreshes
//   - yuy2: the table-driven RGB565 to YUY2 conversion kernel
//   - fbdev: access to Linux framebuffer devices for real output
//   - trace: recording and replay of refresh traffic
//
// Basic usage:
//
//	conv := yuy2.NewConverter(yuy2.BT601)
//	scr, err := shadowfb.NewScreen(shadowfb.Config{
//		Width: 640, Height: 480,
//		Out: dev.Pix(), OutPitch: dev.Pitch(),
//		Converter: conv,
//	})
//	// draw into scr.Shadow(), then at each sync point:
//	scr.Refresh(damage.Boxes())
package shadowfb
