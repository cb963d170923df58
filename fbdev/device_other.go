//go:build !linux

package fbdev

// Device is a memory-mapped framebuffer device. Framebuffer devices
// only exist on Linux; on other platforms Open always fails.
type Device struct{}

// Open is unsupported on this platform.
func Open(path string, mode Mode) (*Device, error) {
	return nil, ErrUnsupportedPlatform
}

func (d *Device) Pix() []byte { return nil }
func (d *Device) Pitch() int  { return 0 }
func (d *Device) Mode() Mode  { return Mode{} }
func (d *Device) Close() error {
	return nil
}
