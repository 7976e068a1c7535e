// Package hex implements cube-coordinate hexagonal grids: coordinate
// conversion, distance, neighbors, rings, pixel layout and a sparse,
// radius-bounded map of cells.
package hex

import "fmt"

// Point is a cube coordinate (q, r, s) with q+r+s=0.
// It is comparable and can be used directly as a map key.
type Point struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// Origin is the center of every map.
var Origin = Point{}

// NewPoint validates a cube triple. Inconsistent triples are rejected,
// never corrected.
func NewPoint(q, r, s int) (Point, error) {
	p := Point{Q: q, R: r, S: s}
	if !p.Valid() {
		return Point{}, fmt.Errorf("%w: (%d, %d, %d) sums to %d", ErrInvalidCoordinate, q, r, s, q+r+s)
	}
	return p, nil
}

// Axial builds a point from axial coordinates; s is derived as -q-r.
func Axial(q, r int) Point { return Point{Q: q, R: r, S: -q - r} }

// Valid reports whether the cube invariant holds.
func (p Point) Valid() bool { return p.Q+p.R+p.S == 0 }

// ToAxial drops the redundant s component.
func (p Point) ToAxial() (q, r int) { return p.Q, p.R }

// Add returns p+b.
func (p Point) Add(b Point) Point { return Point{p.Q + b.Q, p.R + b.R, p.S + b.S} }

// Sub returns p-b.
func (p Point) Sub(b Point) Point { return Point{p.Q - b.Q, p.R - b.R, p.S - b.S} }

// Scale multiplies every component by k.
func (p Point) Scale(k int) Point { return Point{p.Q * k, p.R * k, p.S * k} }

// Distance returns the hex distance between p and b.
func (p Point) Distance(b Point) int { return Distance(p, b) }

// Neighbor returns the adjacent point in direction d.
func (p Point) Neighbor(d Direction) Point { return Neighbor(p, d) }

// Neighbors returns the six adjacent points in direction order.
func (p Point) Neighbors() [6]Point {
	var out [6]Point
	for i, d := range directions {
		out[i] = p.Add(d)
	}
	return out
}

// Less orders points by spiral index around the origin.
func (p Point) Less(b Point) bool { return p.SpiralIndex() < b.SpiralIndex() }

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.Q, p.R, p.S)
}

// ToOffset converts to offset (col, row) coordinates.
//
// PointyTop uses "odd-r": odd rows are shoved right by half a cell.
// FlatTop uses "odd-q": odd columns are shoved down by half a cell.
func (p Point) ToOffset(o Orientation) (col, row int) {
	if o == FlatTop {
		return p.Q, p.R + (p.Q-(p.Q&1))/2
	}
	return p.Q + (p.R-(p.R&1))/2, p.R
}

// FromOffset is the inverse of ToOffset.
func FromOffset(col, row int, o Orientation) Point {
	if o == FlatTop {
		return Axial(col, row-(col-(col&1))/2)
	}
	return Axial(col-(row-(row&1))/2, row)
}

// Distance returns the hex distance between two cube coordinates.
func Distance(a, b Point) int {
	return (abs(a.Q-b.Q) + abs(a.R-b.R) + abs(a.S-b.S)) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
