// Package trace records shadowfb refresh traffic to a compressed stream
// and replays it later. A trace holds, per refresh batch, the damage
// rectangles and the shadow-buffer bytes beneath them, so replaying a
// trace through a Screen reproduces the original output surface
// byte for byte.
package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/shadowfb"
)

const (
	magic   = "SFBT"
	version = 1

	// Sanity bound on rectangles per batch when reading untrusted
	// streams.
	maxBoxes = 1 << 16
)

// Errors returned by the reader side.
var (
	ErrFormat   = errors.New("trace: not a shadowfb trace")
	ErrGeometry = errors.New("trace: geometry mismatch")
)

// A Recorder writes refresh batches to an underlying stream. Recording
// happens on the refresh thread, so the encoder is configured
// single-threaded for speed over ratio.
type Recorder struct {
	zw      *zstd.Encoder
	width   int
	height  int
	scratch []byte
}

// NewRecorder starts a trace for a screen of the given dimensions.
// Close must be called to flush the stream.
func NewRecorder(w io.Writer, width, height int) (*Recorder, error) {
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	r := &Recorder{zw: zw, width: width, height: height}
	hdr := make([]byte, 0, 9)
	hdr = append(hdr, magic...)
	hdr = append(hdr, version)
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(width))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(height))
	if _, err := zw.Write(hdr); err != nil {
		zw.Close()
		return nil, fmt.Errorf("trace: writing header: %w", err)
	}
	return r, nil
}

// Record appends one refresh batch: the boxes and the shadow bytes of
// each box's aligned extent, row by row.
func (r *Recorder) Record(shadow *shadowfb.Surface, boxes []shadowfb.Box) error {
	buf := r.scratch[:0]
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(boxes)))
	for _, b := range boxes {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(b.X1))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(b.Y1))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(b.X2))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(b.Y2))

		left, right := b.Aligned()
		for y := b.Y1; y < b.Y2; y++ {
			off := shadow.PixOffset(left, y)
			buf = append(buf, shadow.Pix[off:off+(right-left)*2]...)
		}
	}
	r.scratch = buf

	if _, err := r.zw.Write(buf); err != nil {
		return fmt.Errorf("trace: writing batch: %w", err)
	}
	return nil
}

// Close flushes and closes the compressed stream. It does not close the
// underlying writer.
func (r *Recorder) Close() error {
	return r.zw.Close()
}

// A Player reads a trace and applies its batches to a Screen.
type Player struct {
	zr     *zstd.Decoder
	width  int
	height int
}

// NewPlayer opens a trace stream and reads its header.
func NewPlayer(src io.Reader) (*Player, error) {
	zr, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	var hdr [9]byte
	if _, err := io.ReadFull(zr, hdr[:]); err != nil {
		zr.Close()
		return nil, fmt.Errorf("trace: reading header: %w", err)
	}
	if string(hdr[:4]) != magic || hdr[4] != version {
		zr.Close()
		return nil, ErrFormat
	}
	return &Player{
		zr:     zr,
		width:  int(binary.LittleEndian.Uint16(hdr[5:7])),
		height: int(binary.LittleEndian.Uint16(hdr[7:9])),
	}, nil
}

// Width returns the recorded screen width.
func (p *Player) Width() int { return p.width }

// Height returns the recorded screen height.
func (p *Player) Height() int { return p.height }

// Next reads one batch, copies its shadow bytes into scr's shadow
// buffer, and refreshes the batch's boxes. It returns io.EOF when the
// trace is exhausted.
func (p *Player) Next(scr *shadowfb.Screen) error {
	if b := scr.Bounds(); b.Dx() != p.width || b.Dy() != p.height {
		return fmt.Errorf("%w: trace %dx%d, screen %dx%d",
			ErrGeometry, p.width, p.height, b.Dx(), b.Dy())
	}

	var nbuf [4]byte
	if _, err := io.ReadFull(p.zr, nbuf[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("trace: reading batch: %w", err)
	}
	n := binary.LittleEndian.Uint32(nbuf[:])
	if n > maxBoxes {
		return fmt.Errorf("%w: %d rectangles in one batch", ErrFormat, n)
	}

	shadow := scr.Shadow()
	boxes := make([]shadowfb.Box, 0, n)
	var rect [8]byte
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(p.zr, rect[:]); err != nil {
			return fmt.Errorf("trace: reading rectangle: %w", err)
		}
		b := shadowfb.Box{
			X1: int(binary.LittleEndian.Uint16(rect[0:2])),
			Y1: int(binary.LittleEndian.Uint16(rect[2:4])),
			X2: int(binary.LittleEndian.Uint16(rect[4:6])),
			Y2: int(binary.LittleEndian.Uint16(rect[6:8])),
		}
		if b.X2 > p.width || b.Y2 > p.height || b.Empty() {
			return fmt.Errorf("%w: rectangle %+v out of bounds", ErrFormat, b)
		}

		left, right := b.Aligned()
		for y := b.Y1; y < b.Y2; y++ {
			off := shadow.PixOffset(left, y)
			if _, err := io.ReadFull(p.zr, shadow.Pix[off:off+(right-left)*2]); err != nil {
				return fmt.Errorf("trace: reading pixels: %w", err)
			}
		}
		boxes = append(boxes, b)
	}

	scr.Refresh(boxes)
	return nil
}

// Close releases the decoder. It does not close the underlying reader.
func (p *Player) Close() {
	p.zr.Close()
}
