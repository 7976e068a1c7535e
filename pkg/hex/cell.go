package hex

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Cell is one addressable hexagon: an immutable point, the layout used to
// derive its pixel geometry and a caller-defined payload.
type Cell[T any] struct {
	point  Point
	layout Layout
	data   T
}

// NewCell builds a standalone cell for geometry queries.
func NewCell[T any](p Point, o Orientation, size float64, data T) (*Cell[T], error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinate, p)
	}
	l, err := NewLayout(o, size)
	if err != nil {
		return nil, err
	}
	return &Cell[T]{point: p, layout: l, data: data}, nil
}

func (c *Cell[T]) Point() Point              { return c.point }
func (c *Cell[T]) Layout() Layout            { return c.layout }
func (c *Cell[T]) Orientation() Orientation  { return c.layout.Orientation }
func (c *Cell[T]) Size() float64             { return c.layout.Size }
func (c *Cell[T]) Data() T                   { return c.data }
func (c *Cell[T]) SetData(v T)               { c.data = v }
func (c *Cell[T]) Neighbors() [6]Point       { return c.point.Neighbors() }
func (c *Cell[T]) DistanceTo(o *Cell[T]) int { return Distance(c.point, o.point) }

// Offset returns the cell's (col, row) in the offset system for its
// orientation.
func (c *Cell[T]) Offset() (col, row int) { return c.point.ToOffset(c.layout.Orientation) }

// Center returns the pixel center.
func (c *Cell[T]) Center() orb.Point { return c.layout.ToPixel(c.point) }

// Corners returns the six pixel vertices in drawing order.
func (c *Cell[T]) Corners() [6]orb.Point { return c.layout.Corners(c.point) }

// Polygon returns the closed pixel boundary.
func (c *Cell[T]) Polygon() orb.Polygon { return c.layout.Polygon(c.point) }

// Bound returns the pixel bounding box.
func (c *Cell[T]) Bound() orb.Bound { return c.layout.Bound(c.point) }

// Dimensions returns the cell's pixel width and height.
func (c *Cell[T]) Dimensions() (width, height float64) { return c.layout.Dimensions() }

// NearestDirection returns the neighbor direction closest to a screen angle.
func (c *Cell[T]) NearestDirection(angle float64) Direction {
	return NearestDirection(angle, c.layout.Orientation)
}

func (c *Cell[T]) String() string {
	return fmt.Sprintf("Cell%v#%d", c.point, c.point.SpiralIndex())
}

// NearestCorner returns the index of the corner closest to a screen angle.
func (c *Cell[T]) NearestCorner(angle float64) int {
	return NearestCorner(angle, c.layout.Orientation)
}

// PointAtAngle returns the boundary point in the direction of a screen
// angle from the cell's center.
func (c *Cell[T]) PointAtAngle(angle float64) orb.Point {
	return c.layout.PointAtAngle(c.point, angle)
}
