//go:build linux

package fbdev

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/fb.h ioctl numbers and constants.
const (
	ioGetVarScreenInfo = 0x4600
	ioPutVarScreenInfo = 0x4601
	ioGetFixScreenInfo = 0x4602

	fbTypePackedPixels = 0
	fbVisualTrueColor  = 2

	fbActivateNow = 0
)

type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uint64
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	_            uint16
	LineLength   uint32
	_            uint32
	MmioStart    uint64
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	_            [3]uint16
}

type bitField struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32

	Red    bitField
	Green  bitField
	Blue   bitField
	Transp bitField

	NonStd   uint32
	Activate uint32
	Height   uint32
	Width    uint32

	AccelFlags uint32
	PixClock   uint32

	LeftMargin  uint32
	RightMargin uint32
	UpperMargin uint32
	LowerMargin uint32
	HSyncLen    uint32
	VSyncLen    uint32
	Sync        uint32
	VMode       uint32
	Rotate      uint32
	Colorspace  uint32
	_           [4]uint32
}

// Device is a memory-mapped framebuffer device.
type Device struct {
	f      *os.File
	mapped []byte // full mapping, page aligned
	pix    []byte // pixel data within the mapping
	pitch  int
	mode   Mode
}

func ioctl(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Open memory-maps the framebuffer device at path (such as "/dev/fb0")
// and programs the requested mode. Only packed-pixel truecolor hardware
// is accepted.
func Open(path string, mode Mode) (*Device, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: %w", err)
	}

	var fi fixScreenInfo
	if err := ioctl(f.Fd(), ioGetFixScreenInfo, unsafe.Pointer(&fi)); err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: reading hardware info: %w", err)
	}
	if fi.Type != fbTypePackedPixels || fi.Visual != fbVisualTrueColor {
		f.Close()
		return nil, fmt.Errorf("%w: type %d visual %d", ErrUnsupportedHardware, fi.Type, fi.Visual)
	}

	// The physical address may start inside a page; map from the page
	// boundary and skip the remainder.
	pageMask := uint64(unix.Getpagesize() - 1)
	off := int(fi.SmemStart & pageMask)
	mapped, err := unix.Mmap(int(f.Fd()), 0, int(fi.SmemLen)+off,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: mapping video memory: %w", err)
	}

	d := &Device{
		f:      f,
		mapped: mapped,
		pix:    mapped[off:],
		mode:   mode,
	}
	if err := d.setMode(mode); err != nil {
		d.Close()
		return nil, err
	}

	if err := ioctl(f.Fd(), ioGetFixScreenInfo, unsafe.Pointer(&fi)); err != nil {
		d.Close()
		return nil, fmt.Errorf("fbdev: rereading hardware info: %w", err)
	}
	d.pitch = int(fi.LineLength)
	if d.pitch == 0 {
		d.pitch = mode.Width * mode.BPP >> 3
	}
	return d, nil
}

func (d *Device) setMode(mode Mode) error {
	var vi varScreenInfo
	if err := ioctl(d.f.Fd(), ioGetVarScreenInfo, unsafe.Pointer(&vi)); err != nil {
		return fmt.Errorf("fbdev: reading pixel format: %w", err)
	}

	vi.Activate = fbActivateNow
	vi.AccelFlags = 0
	vi.BitsPerPixel = uint32(mode.BPP)
	vi.XRes = uint32(mode.Width)
	vi.XResVirtual = uint32(mode.Width)
	vi.YRes = uint32(mode.Height)
	vi.YResVirtual = uint32(mode.Height)
	vi.XOffset = 0
	vi.YOffset = 0
	vi.Red = bitField{}
	vi.Green = bitField{}
	vi.Blue = bitField{}
	vi.Transp = bitField{}

	if err := ioctl(d.f.Fd(), ioPutVarScreenInfo, unsafe.Pointer(&vi)); err != nil {
		return fmt.Errorf("fbdev: setting mode %s: %w", mode, err)
	}
	return nil
}

// Pix returns the mapped pixel buffer. It is valid until Close.
func (d *Device) Pix() []byte { return d.pix }

// Pitch returns the hardware row stride in bytes.
func (d *Device) Pitch() int { return d.pitch }

// Mode returns the active display mode.
func (d *Device) Mode() Mode { return d.mode }

// Close zero-fills the framebuffer, unmaps it, and closes the device.
// It is idempotent.
func (d *Device) Close() error {
	if d.f == nil {
		return nil
	}
	clear(d.mapped)
	err := unix.Munmap(d.mapped)
	d.mapped = nil
	d.pix = nil
	if cerr := d.f.Close(); err == nil {
		err = cerr
	}
	d.f = nil
	return err
}
