package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/deepteams/shadowfb"
	"github.com/deepteams/shadowfb/fbdev"
	"github.com/deepteams/shadowfb/trace"
	"github.com/deepteams/shadowfb/yuy2"
)

// viewer is an ebiten game that presents a Screen's output surface. The
// window shows what the hardware would: the YUY2 buffer decoded back to
// RGB, including blanking.
type viewer struct {
	scr  *shadowfb.Screen
	mode fbdev.Mode

	img   *image.RGBA
	fbImg *ebiten.Image

	step func() error
}

func newViewer(scr *shadowfb.Screen, mode fbdev.Mode, step func() error) *viewer {
	return &viewer{
		scr:   scr,
		mode:  mode,
		img:   image.NewRGBA(image.Rect(0, 0, mode.Width, mode.Height)),
		fbImg: ebiten.NewImage(mode.Width, mode.Height),
		step:  step,
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.scr.SetBlanked(!v.scr.Blanked())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if v.step != nil {
		return v.step()
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	yuy2.ToRGBA(v.scr.Out(), v.mode.Width, v.mode.Height, v.scr.OutPitch(), v.img)
	v.fbImg.WritePixels(v.img.Pix)
	screen.DrawImage(v.fbImg, nil)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.mode.Width, v.mode.Height
}

func runWindow(title string, v *viewer) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(v.mode.Width, v.mode.Height)
	ebiten.SetTPS(60)
	return ebiten.RunGame(v)
}

// --- demo ---

func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	modeName := fs.String("mode", "ntsc", "display mode: ntsc (640x480) or pal (640x576)")
	record := fs.String("record", "", "record refresh traffic to this trace file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		return err
	}

	out := make([]byte, shadowfb.ShadowPitch(mode.Width, mode.BPP)*mode.Height)
	scr, err := shadowfb.NewScreen(shadowfb.Config{
		Width:     mode.Width,
		Height:    mode.Height,
		Out:       out,
		Converter: yuy2.NewConverter(yuy2.BT601),
	})
	if err != nil {
		return err
	}

	var rec *trace.Recorder
	if *record != "" {
		f, err := os.Create(*record)
		if err != nil {
			return err
		}
		defer f.Close()
		rec, err = trace.NewRecorder(f, mode.Width, mode.Height)
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	d := newDemo(scr, mode, rec)
	fmt.Println("sfb demo: B blanks/unblanks, Q quits")
	return runWindow("sfb demo", newViewer(scr, mode, d.step))
}

// demo bounces a block over color bars, damaging only what moved.
type demo struct {
	scr  *shadowfb.Screen
	mode fbdev.Mode
	rec  *trace.Recorder

	damage shadowfb.Damage

	x, y   int
	dx, dy int
}

const blockSize = 48

func newDemo(scr *shadowfb.Screen, mode fbdev.Mode, rec *trace.Recorder) *demo {
	d := &demo{scr: scr, mode: mode, rec: rec, x: 40, y: 60, dx: 3, dy: 2}
	d.drawBars()
	d.damage.Add(shadowfb.Box{X2: mode.Width, Y2: mode.Height})
	return d
}

// SMPTE-ish bars: white, yellow, cyan, green, magenta, red, blue, black.
var barColors = [8]uint16{
	0xffff, 0xffe0, 0x07ff, 0x07e0, 0xf81f, 0xf800, 0x001f, 0x0000,
}

func (d *demo) drawBars() {
	s := d.scr.Shadow()
	barWidth := d.mode.Width / len(barColors)
	for y := 0; y < d.mode.Height; y++ {
		for x := 0; x < d.mode.Width; x++ {
			s.SetPixel565(x, y, barColors[x/barWidth])
		}
	}
}

func (d *demo) step() error {
	// Repaint the block's old footprint with the bars, then draw it at
	// the new position. Both spots are damage.
	old := shadowfb.Box{X1: d.x, Y1: d.y, X2: d.x + blockSize, Y2: d.y + blockSize}
	s := d.scr.Shadow()
	barWidth := d.mode.Width / len(barColors)
	for y := old.Y1; y < old.Y2; y++ {
		for x := old.X1; x < old.X2; x++ {
			s.SetPixel565(x, y, barColors[x/barWidth])
		}
	}
	d.damage.Add(old)

	d.x += d.dx
	d.y += d.dy
	if d.x < 0 || d.x+blockSize > d.mode.Width {
		d.dx = -d.dx
		d.x += 2 * d.dx
	}
	if d.y < 0 || d.y+blockSize > d.mode.Height {
		d.dy = -d.dy
		d.y += 2 * d.dy
	}

	cur := shadowfb.Box{X1: d.x, Y1: d.y, X2: d.x + blockSize, Y2: d.y + blockSize}
	for y := cur.Y1; y < cur.Y2; y++ {
		for x := cur.X1; x < cur.X2; x++ {
			s.SetPixel565(x, y, 0x8410) // mid gray
		}
	}
	d.damage.Add(cur)

	if d.rec != nil {
		if err := d.rec.Record(s, d.damage.Boxes()); err != nil {
			return err
		}
	}
	d.damage.Flush(d.scr)
	return nil
}

// --- replay ---

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("replay: expected one trace file")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := trace.NewPlayer(f)
	if err != nil {
		return err
	}
	defer p.Close()

	mode := fbdev.Mode{Width: p.Width(), Height: p.Height(), BPP: 16}
	out := make([]byte, shadowfb.ShadowPitch(mode.Width, mode.BPP)*mode.Height)
	scr, err := shadowfb.NewScreen(shadowfb.Config{
		Width:     mode.Width,
		Height:    mode.Height,
		Out:       out,
		Converter: yuy2.NewConverter(yuy2.BT601),
	})
	if err != nil {
		return err
	}

	done := false
	step := func() error {
		if done {
			return nil
		}
		switch err := p.Next(scr); err {
		case nil:
		case io.EOF:
			done = true
		default:
			return err
		}
		return nil
	}
	return runWindow("sfb replay", newViewer(scr, mode, step))
}
