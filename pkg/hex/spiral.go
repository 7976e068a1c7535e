package hex

import "math"

// SpiralIndex numbers points in Spiral(Origin, ∞) order: the origin is 0,
// ring 1 holds 1..6, ring 2 holds 7..18, and so on.
func (p Point) SpiralIndex() int {
	k := Distance(Origin, p)
	if k == 0 {
		return 0
	}
	return ringStart(k) + ringOffset(p, k)
}

// FromSpiralIndex is the inverse of SpiralIndex. Negative indexes map to
// the origin.
func FromSpiralIndex(i int) Point {
	if i <= 0 {
		return Origin
	}
	k := spiralRing(i)
	off := i - ringStart(k)
	side, step := off/k, off%k
	return ringCorner(k, Direction(side)).Add(Direction(side).Vector().Scale(step))
}

// ringStart is the spiral index of the first point of ring k.
func ringStart(k int) int {
	if k == 0 {
		return 0
	}
	return areaSize(k - 1)
}

// spiralRing returns the ring holding spiral index i (i > 0).
func spiralRing(i int) int {
	k := int((3 + math.Sqrt(float64(9+12*(i-1)))) / 6)
	if k < 1 {
		k = 1
	}
	// correct float error at ring boundaries
	for ringStart(k) > i {
		k--
	}
	for ringStart(k+1) <= i {
		k++
	}
	return k
}

// ringCorner returns the point where side d of ring k begins.
func ringCorner(k int, d Direction) Point {
	c := NorthWest.Vector().Scale(k)
	for s := East; s < d; s++ {
		c = c.Add(s.Vector().Scale(k))
	}
	return c
}

// ringOffset returns the position of p (at distance k > 0 from the origin)
// along Ring(Origin, k).
func ringOffset(p Point, k int) int {
	switch {
	case p.R == -k && p.Q >= 0 && p.Q < k:
		return p.Q
	case p.Q == k && p.R < 0:
		return k + p.R + k
	case p.S == -k && p.Q > 0:
		return 2*k + k - p.Q
	case p.R == k && p.Q <= 0 && p.Q > -k:
		return 3*k - p.Q
	case p.Q == -k && p.R > 0:
		return 4*k + k - p.R
	default:
		return 5*k + p.Q + k
	}
}
