// Command sfb works with shadowfb YUY2 frames and refresh traces.
//
// Usage:
//
//	sfb convert [options] <input>   PNG/JPEG/GIF → raw YUY2 frame
//	sfb demo [options]              animate a test pattern in a window
//	sfb replay [options] <trace>    play a recorded refresh trace
//	sfb info <input.yuy2>           describe a raw YUY2 frame
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/deepteams/shadowfb"
	"github.com/deepteams/shadowfb/fbdev"
	"github.com/deepteams/shadowfb/yuy2"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:])
	case "demo":
		err = runDemo(os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "sfb: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "sfb: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  sfb convert [options] <input>   Convert PNG/JPEG/GIF to a raw YUY2 frame
  sfb demo [options]              Animate a test pattern through the engine
  sfb replay [options] <trace>    Play back a recorded refresh trace
  sfb info <input.yuy2>           Describe a raw YUY2 frame

Run "sfb <command> -h" for command-specific options.
`)
}

// parseMode maps the -mode flag to a display mode.
func parseMode(name string) (fbdev.Mode, error) {
	switch strings.ToLower(name) {
	case "ntsc", "480":
		return fbdev.ModeNTSC, nil
	case "pal", "576":
		return fbdev.ModePAL, nil
	}
	return fbdev.Mode{}, fmt.Errorf("unknown mode %q (want ntsc or pal)", name)
}

// --- convert ---

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default: input with .yuy2 extension)")
	modeName := fs.String("mode", "ntsc", "display mode: ntsc (640x480) or pal (640x576)")
	space := fs.String("csp", "bt601", "color space: bt601 or bt709")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("convert: expected one input file")
	}
	input := fs.Arg(0)

	mode, err := parseMode(*modeName)
	if err != nil {
		return err
	}
	cs, err := parseColorSpace(*space)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", input, err)
	}

	frame, err := convertFrame(src, mode, cs)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		ext := filepath.Ext(input)
		path = strings.TrimSuffix(input, ext) + ".yuy2"
	}
	if err := os.WriteFile(path, frame, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %s, %d bytes\n", path, mode, len(frame))
	return nil
}

func parseColorSpace(name string) (yuy2.ColorSpace, error) {
	switch strings.ToLower(name) {
	case "bt601", "601":
		return yuy2.BT601, nil
	case "bt709", "709":
		return yuy2.BT709, nil
	}
	return yuy2.ColorSpace{}, fmt.Errorf("unknown color space %q", name)
}

// convertFrame scales src to the mode's resolution and runs it through
// the full shadow→YUY2 pipeline, returning a dense frame (pitch ==
// width*2).
func convertFrame(src image.Image, mode fbdev.Mode, cs yuy2.ColorSpace) ([]byte, error) {
	bounds := image.Rect(0, 0, mode.Width, mode.Height)
	fitted := image.NewRGBA(bounds)
	xdraw.CatmullRom.Scale(fitted, bounds, src, src.Bounds(), xdraw.Over, nil)

	out := make([]byte, mode.Width*2*mode.Height)
	scr, err := shadowfb.NewScreen(shadowfb.Config{
		Width:     mode.Width,
		Height:    mode.Height,
		Out:       out,
		OutPitch:  mode.Width * 2,
		Converter: yuy2.NewConverter(cs),
	})
	if err != nil {
		return nil, err
	}

	draw.Draw(scr.Shadow(), bounds, fitted, image.Point{}, draw.Src)
	scr.RefreshAll()
	return out, nil
}

// --- info ---

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected one input file")
	}
	input := fs.Arg(0)

	st, err := os.Stat(input)
	if err != nil {
		return err
	}

	mode := fbdev.Mode{}
	for _, m := range []fbdev.Mode{fbdev.ModeNTSC, fbdev.ModePAL} {
		if st.Size() == int64(m.Width*2*m.Height) {
			mode = m
		}
	}
	if mode == (fbdev.Mode{}) {
		fmt.Printf("%s: %d bytes, not a dense 640x480 or 640x576 frame\n",
			input, st.Size())
		return nil
	}
	fmt.Printf("%s: %s YUY2, %d macropixels\n", input, mode, st.Size()/4)
	return nil
}
