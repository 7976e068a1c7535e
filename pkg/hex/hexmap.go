package hex

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// DefaultCellSize is the corner radius used when no WithCellSize option is
// given: one pixel unit.
const DefaultCellSize = 1.0

// Option configures the layout of a Map.
type Option func(*Layout)

// WithCellSize sets the pixel distance from a cell center to its corners.
func WithCellSize(size float64) Option {
	return func(l *Layout) { l.Size = size }
}

// WithOrigin sets the pixel position of the map's origin cell.
func WithOrigin(pt orb.Point) Option {
	return func(l *Layout) { l.Origin = pt }
}

// Map is a sparse set of cells keyed by point and bounded by a radius around
// the origin: every stored point p has Distance(Origin, p) <= Radius().
//
// A Map is not safe for concurrent use; callers sharing one must serialize
// access.
type Map[T any] struct {
	radius int
	layout Layout
	cells  map[Point]*Cell[T]
}

// NewMap returns an empty map.
func NewMap[T any](radius int, o Orientation, opts ...Option) (*Map[T], error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}
	l := Layout{Orientation: o, Size: DefaultCellSize}
	for _, opt := range opts {
		opt(&l)
	}
	if _, err := NewLayout(l.Orientation, l.Size); err != nil {
		return nil, err
	}
	return &Map[T]{
		radius: radius,
		layout: l,
		cells:  make(map[Point]*Cell[T]),
	}, nil
}

func (m *Map[T]) Radius() int              { return m.radius }
func (m *Map[T]) Orientation() Orientation { return m.layout.Orientation }
func (m *Map[T]) Layout() Layout           { return m.layout }
func (m *Map[T]) Len() int                 { return len(m.cells) }

// InBounds reports whether p may be stored in the map.
func (m *Map[T]) InBounds(p Point) bool {
	return p.Valid() && Distance(Origin, p) <= m.radius
}

func (m *Map[T]) check(p Point) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinate, p)
	}
	if d := Distance(Origin, p); d > m.radius {
		return fmt.Errorf("%w: %v is %d from origin, radius is %d", ErrOutOfBounds, p, d, m.radius)
	}
	return nil
}

// Set stores v at p in a fresh cell, replacing any previous one. Points
// outside the radius are rejected and leave the map unchanged.
func (m *Map[T]) Set(p Point, v T) error {
	if err := m.check(p); err != nil {
		return err
	}
	m.cells[p] = &Cell[T]{point: p, layout: m.layout, data: v}
	return nil
}

// Get returns the payload at p. ok is false when nothing is stored there,
// which is distinct from a stored zero value.
func (m *Map[T]) Get(p Point) (v T, ok bool) {
	c, ok := m.cells[p]
	if !ok {
		return v, false
	}
	return c.data, true
}

// Lookup is Get with an error that says why nothing was found.
func (m *Map[T]) Lookup(p Point) (T, error) {
	var zero T
	if err := m.check(p); err != nil {
		return zero, err
	}
	c, ok := m.cells[p]
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrAbsentKey, p)
	}
	return c.data, nil
}

// Cell returns the stored cell at p.
func (m *Map[T]) Cell(p Point) (*Cell[T], bool) {
	c, ok := m.cells[p]
	return c, ok
}

// Has reports whether a cell is stored at p.
func (m *Map[T]) Has(p Point) bool {
	_, ok := m.cells[p]
	return ok
}

// Remove deletes the cell at p, returning ErrAbsentKey if there was none.
func (m *Map[T]) Remove(p Point) error {
	if _, ok := m.cells[p]; !ok {
		return fmt.Errorf("%w: %v", ErrAbsentKey, p)
	}
	delete(m.cells, p)
	return nil
}

// Swap exchanges the payloads stored at a and b. Both must be present.
// Cells previously returned for a or b keep their old payloads.
func (m *Map[T]) Swap(a, b Point) error {
	ca, ok := m.cells[a]
	if !ok {
		return fmt.Errorf("%w: %v", ErrAbsentKey, a)
	}
	cb, ok := m.cells[b]
	if !ok {
		return fmt.Errorf("%w: %v", ErrAbsentKey, b)
	}
	m.cells[a] = &Cell[T]{point: a, layout: m.layout, data: cb.data}
	m.cells[b] = &Cell[T]{point: b, layout: m.layout, data: ca.data}
	return nil
}

// Fill stores fn(p) at every empty point within k of the origin and returns
// the number of cells added. Existing cells are left alone.
func (m *Map[T]) Fill(k int, fn func(Point) T) (int, error) {
	if k < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRadius, k)
	}
	if k > m.radius {
		return 0, fmt.Errorf("%w: fill radius %d exceeds map radius %d", ErrOutOfBounds, k, m.radius)
	}
	added := 0
	for _, p := range Spiral(Origin, k) {
		if m.Has(p) {
			continue
		}
		m.cells[p] = &Cell[T]{point: p, layout: m.layout, data: fn(p)}
		added++
	}
	return added, nil
}

// NeighborsOf returns the occupied neighbors of p in direction order.
func (m *Map[T]) NeighborsOf(p Point) []*Cell[T] {
	out := make([]*Cell[T], 0, 6)
	for _, n := range p.Neighbors() {
		if c, ok := m.cells[n]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CellsInRange returns the occupied cells within k of center, in spiral
// order around center.
func (m *Map[T]) CellsInRange(center Point, k int) []*Cell[T] {
	if k < 0 {
		return nil
	}
	// no stored cell lies farther from center than this
	if far := m.radius + Distance(Origin, center); k > far {
		k = far
	}
	if areaSize(k) <= len(m.cells) {
		return m.collect(Spiral(center, k))
	}
	// the query area is larger than the map: filter the map instead
	out := make([]*Cell[T], 0, len(m.cells))
	for p, c := range m.cells {
		if Distance(center, p) <= k {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].point.Sub(center).SpiralIndex() < out[j].point.Sub(center).SpiralIndex()
	})
	return out
}

// CellsInRing returns the occupied cells at exactly k from center, in ring
// order.
func (m *Map[T]) CellsInRing(center Point, k int) []*Cell[T] {
	return m.collect(Ring(center, k))
}

// CellsOnLine returns the occupied cells on the segment from a to b.
func (m *Map[T]) CellsOnLine(a, b Point) []*Cell[T] {
	return m.collect(Line(a, b))
}

// Cells returns every stored cell ordered by spiral index around the
// origin. Set, Swap and Remove replace cells rather than editing them, so
// the result is unaffected by later map mutations. Cell.SetData on a
// returned cell does write through to the map.
func (m *Map[T]) Cells() []*Cell[T] {
	out := make([]*Cell[T], 0, len(m.cells))
	for _, c := range m.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].point.Less(out[j].point) })
	return out
}

// FromPixel returns the point under a pixel position in the map's layout.
// The point may lie outside the map.
func (m *Map[T]) FromPixel(pt orb.Point) Point { return m.layout.FromPixel(pt) }

// Bound returns the pixel bounding box of all stored cells; ok is false for
// an empty map.
func (m *Map[T]) Bound() (b orb.Bound, ok bool) {
	for p := range m.cells {
		cb := m.layout.Bound(p)
		if !ok {
			b, ok = cb, true
			continue
		}
		b = b.Union(cb)
	}
	return b, ok
}

func (m *Map[T]) collect(points []Point) []*Cell[T] {
	out := make([]*Cell[T], 0, len(points))
	for _, p := range points {
		if c, ok := m.cells[p]; ok {
			out = append(out, c)
		}
	}
	return out
}
