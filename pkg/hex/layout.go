package hex

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Layout maps cube coordinates to pixel space. Size is the distance from a
// cell's center to any corner; Origin is the pixel position of Origin.
// Pixel space has y growing downward.
type Layout struct {
	Orientation Orientation
	Size        float64
	Origin      orb.Point
}

// NewLayout validates size and returns a layout centered on (0, 0).
func NewLayout(o Orientation, size float64) (Layout, error) {
	if !(size > 0) || math.IsInf(size, 0) {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	return Layout{Orientation: o, Size: size}, nil
}

// ToPixel returns the center of p.
func (l Layout) ToPixel(p Point) orb.Point {
	m := l.Orientation.matrix()
	x := (m.f0*float64(p.Q) + m.f1*float64(p.R)) * l.Size
	y := (m.f2*float64(p.Q) + m.f3*float64(p.R)) * l.Size
	return orb.Point{x + l.Origin.X(), y + l.Origin.Y()}
}

// FractionalFromPixel applies the inverse transform without rounding.
func (l Layout) FractionalFromPixel(pt orb.Point) (q, r, s float64) {
	m := l.Orientation.matrix()
	x := (pt.X() - l.Origin.X()) / l.Size
	y := (pt.Y() - l.Origin.Y()) / l.Size
	q = m.b0*x + m.b1*y
	r = m.b2*x + m.b3*y
	return q, r, -q - r
}

// FromPixel returns the cell containing pt.
func (l Layout) FromPixel(pt orb.Point) Point {
	return Round(l.FractionalFromPixel(pt))
}

// CornerOffset returns corner i relative to a cell center.
func (l Layout) CornerOffset(i int) orb.Point {
	rad := (l.Orientation.cornerOffset() + 60*float64(i)) * math.Pi / 180
	return orb.Point{l.Size * math.Cos(rad), l.Size * math.Sin(rad)}
}

// Corners returns the six vertices of p, clockwise on screen starting at
// 30° for PointyTop and 0° for FlatTop.
func (l Layout) Corners(p Point) [6]orb.Point {
	c := l.ToPixel(p)
	var out [6]orb.Point
	for i := range out {
		off := l.CornerOffset(i)
		out[i] = orb.Point{c.X() + off.X(), c.Y() + off.Y()}
	}
	return out
}

// PointAtAngle returns the point where a ray from the center of p at the
// given screen angle (degrees, clockwise from east) crosses the cell's
// boundary. Corner angles land on corners, edge angles on edge midpoints.
func (l Layout) PointAtAngle(p Point, angle float64) orb.Point {
	edge := NearestDirection(angle, l.Orientation).Angle(l.Orientation)
	apothem := l.Size * sqrt3 / 2
	dist := apothem / math.Cos((angle-edge)*math.Pi/180)
	rad := angle * math.Pi / 180
	c := l.ToPixel(p)
	return orb.Point{c.X() + dist*math.Cos(rad), c.Y() + dist*math.Sin(rad)}
}

// Polygon returns the closed boundary of p.
func (l Layout) Polygon(p Point) orb.Polygon {
	corners := l.Corners(p)
	ring := make(orb.Ring, 0, len(corners)+1)
	ring = append(ring, corners[:]...)
	ring = append(ring, corners[0])
	return orb.Polygon{ring}
}

// Bound returns the pixel bounding box of p.
func (l Layout) Bound(p Point) orb.Bound {
	return l.Polygon(p).Bound()
}

// Dimensions returns the width and height of one cell.
func (l Layout) Dimensions() (width, height float64) {
	return Dimensions(l.Orientation, l.Size)
}

// Spacing returns the center-to-center distance between adjacent columns
// and rows.
func (l Layout) Spacing() (horiz, vert float64) {
	return Spacing(l.Orientation, l.Size)
}

// Dimensions returns the width and height of a cell of the given size.
func Dimensions(o Orientation, size float64) (width, height float64) {
	long, short := 2*size, sqrt3*size
	if o == FlatTop {
		return long, short
	}
	return short, long
}

// Spacing returns the column and row step for cells of the given size.
func Spacing(o Orientation, size float64) (horiz, vert float64) {
	w, h := Dimensions(o, size)
	if o == FlatTop {
		return 0.75 * w, h
	}
	return w, 0.75 * h
}

// ToPixel returns the center of p for a layout at the pixel origin.
func ToPixel(p Point, o Orientation, size float64) orb.Point {
	return Layout{Orientation: o, Size: size}.ToPixel(p)
}

// Corners returns the six vertices of p for a layout at the pixel origin.
func Corners(p Point, o Orientation, size float64) [6]orb.Point {
	return Layout{Orientation: o, Size: size}.Corners(p)
}

// FromPixel returns the cell containing (x, y) for a layout at the pixel
// origin.
func FromPixel(x, y float64, o Orientation, size float64) Point {
	return Layout{Orientation: o, Size: size}.FromPixel(orb.Point{x, y})
}
