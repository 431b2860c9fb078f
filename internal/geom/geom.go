// Package geom provides the coordinate math shared by the viewing pipeline:
// rectangles in document and view space, right-angle rotations, and the
// mapper that converts between the two spaces for a given render scale.
//
// Document space is the page's native coordinate system, independent of the
// current zoom and rotation. View space is the pixel space of the rasterized
// bitmap. The forward transform rotates within the page frame first and then
// scales; the inverse divides by the scale first and then un-rotates. Both
// directions are derived from the same rotation table so a round trip is
// exact up to floating-point error.
package geom

import "errors"

// ErrDegenerateScale is returned when a view-to-document conversion is
// requested with a zero render scale, i.e. before any render completed.
var ErrDegenerateScale = errors.New("geom: degenerate render scale")

// Point is a position in either document or view space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. A canonical Rect has X0 <= X1 and
// Y0 <= Y1; Canon restores that after transforms that may flip corners.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Canon returns the rectangle with corners ordered so X0 <= X1 and Y0 <= Y1.
func (r Rect) Canon() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Scaled returns the rectangle with all coordinates multiplied by s.
func (r Rect) Scaled(s float64) Rect {
	return Rect{X0: r.X0 * s, Y0: r.Y0 * s, X1: r.X1 * s, Y1: r.Y1 * s}
}

// Rotation is a page rotation in degrees, always one of 0, 90, 180, 270.
type Rotation int

// NormalizeRotation folds an arbitrary degree count into {0, 90, 180, 270}.
// Inputs are expected to be multiples of 90; anything else is snapped down
// to the nearest right angle.
func NormalizeRotation(degrees int) Rotation {
	d := ((degrees % 360) + 360) % 360
	return Rotation(d - d%90)
}

// Rotate returns the rotation advanced by delta degrees, normalized.
// Rotating by +90 four times is exactly the identity.
func (r Rotation) Rotate(delta int) Rotation {
	return NormalizeRotation(int(r) + delta)
}

// Swaps reports whether the rotation swaps page width and height.
func (r Rotation) Swaps() bool { return r == 90 || r == 270 }

// ClampZoom bounds a zoom factor to [min, max].
func ClampZoom(z, min, max float64) float64 {
	if z < min {
		return min
	}
	if z > max {
		return max
	}
	return z
}

// Mapper converts rectangles between document space and view space for a
// page of the given unrotated size (in document units).
type Mapper struct {
	PageWidth  float64
	PageHeight float64
}

// rotate maps a document-space point into the rotated page frame. The
// rotated frame keeps the page in the positive quadrant: a 90° turn of a
// W×H page yields an H×W frame with the origin at the top-left again.
func (m Mapper) rotate(p Point, rot Rotation) Point {
	switch rot {
	case 90:
		return Point{X: m.PageHeight - p.Y, Y: p.X}
	case 180:
		return Point{X: m.PageWidth - p.X, Y: m.PageHeight - p.Y}
	case 270:
		return Point{X: p.Y, Y: m.PageWidth - p.X}
	default:
		return p
	}
}

// unrotate is the exact inverse of rotate for the same rotation.
func (m Mapper) unrotate(p Point, rot Rotation) Point {
	switch rot {
	case 90:
		return Point{X: p.Y, Y: m.PageHeight - p.X}
	case 180:
		return Point{X: m.PageWidth - p.X, Y: m.PageHeight - p.Y}
	case 270:
		return Point{X: m.PageWidth - p.Y, Y: p.X}
	default:
		return p
	}
}

// ToView converts a document-space rectangle into view space: rotation
// first, then scale. The order mirrors the rasterization transform.
func (m Mapper) ToView(r Rect, scale float64, rot Rotation) Rect {
	a := m.rotate(Point{X: r.X0, Y: r.Y0}, rot)
	b := m.rotate(Point{X: r.X1, Y: r.Y1}, rot)
	return Rect{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y}.Canon().Scaled(scale)
}

// ToDocument converts a view-space rectangle back into document space:
// divide by the scale first, then apply the inverse rotation. Fails when
// scale is zero, which means no render has completed yet.
func (m Mapper) ToDocument(r Rect, scale float64, rot Rotation) (Rect, error) {
	if scale == 0 {
		return Rect{}, ErrDegenerateScale
	}
	r = r.Scaled(1 / scale)
	a := m.unrotate(Point{X: r.X0, Y: r.Y0}, rot)
	b := m.unrotate(Point{X: r.X1, Y: r.Y1}, rot)
	return Rect{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y}.Canon(), nil
}

// RotatedSize returns the page dimensions after rotation.
func (m Mapper) RotatedSize(rot Rotation) (w, h float64) {
	if rot.Swaps() {
		return m.PageHeight, m.PageWidth
	}
	return m.PageWidth, m.PageHeight
}
