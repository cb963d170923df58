package shadowfb

import "image"

// Box is a damage rectangle in pixel coordinates. X2 and Y2 are
// exclusive bounds.
type Box struct {
	X1, Y1, X2, Y2 int
}

// BoxRect converts an image.Rectangle to a Box.
func BoxRect(r image.Rectangle) Box {
	return Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Empty reports whether the box covers no pixels.
func (b Box) Empty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Aligned returns the horizontal extent widened to macropixel
// boundaries: the left edge rounds down to even, the right edge rounds
// outward to even. The result may over-cover by one column on either
// side, which is safe because source data at those columns is valid.
func (b Box) Aligned() (left, right int) {
	return b.X1 &^ 1, (b.X2 + 1) &^ 1
}

// Damage accumulates changed regions between refreshes. The zero value
// is ready to use. Boxes are kept in insertion order; they are processed
// independently, so overlap is harmless.
type Damage struct {
	boxes []Box
}

// Add records a changed region. Empty boxes are dropped.
func (d *Damage) Add(b Box) {
	if b.Empty() {
		return
	}
	// Drawing code often re-damages the same spot between syncs.
	if n := len(d.boxes); n > 0 && d.boxes[n-1] == b {
		return
	}
	d.boxes = append(d.boxes, b)
}

// AddRect records a changed region given as an image.Rectangle.
func (d *Damage) AddRect(r image.Rectangle) {
	d.Add(BoxRect(r))
}

// Boxes returns the accumulated regions. The slice is owned by the
// Damage until Reset is called.
func (d *Damage) Boxes() []Box {
	return d.boxes
}

// Reset discards all accumulated regions, retaining capacity.
func (d *Damage) Reset() {
	d.boxes = d.boxes[:0]
}

// Flush refreshes the accumulated regions on scr and resets the
// accumulator.
func (d *Damage) Flush(scr *Screen) {
	scr.Refresh(d.boxes)
	d.Reset()
}
