package hex

import (
	"fmt"
	"math"
)

// Direction indexes the six unit vectors, clockwise from east in
// pointy-top screen space (y grows downward).
type Direction int

const (
	East Direction = iota
	SouthEast
	SouthWest
	West
	NorthWest
	NorthEast
)

// directions are the cube unit vectors, indexed by Direction.
var directions = [6]Point{
	{1, 0, -1}, {0, 1, -1}, {-1, 1, 0}, {-1, 0, 1}, {0, -1, 1}, {1, -1, 0},
}

// Directions lists all six directions in order.
var Directions = [6]Direction{East, SouthEast, SouthWest, West, NorthWest, NorthEast}

// Vector returns the unit cube vector for d.
func (d Direction) Vector() Point { return directions[d.normalize()] }

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction { return (d.normalize() + 3) % 6 }

func (d Direction) normalize() Direction { return ((d % 6) + 6) % 6 }

// Angle returns the screen angle of d in degrees, clockwise from the
// positive x axis with y growing downward.
func (d Direction) Angle(o Orientation) float64 {
	return 60*float64(d.normalize()) + o.edgeOffset()
}

// Name returns the compass name of d as drawn in orientation o.
func (d Direction) Name(o Orientation) string { return CompassName(d.Angle(o)) }

func (d Direction) String() string {
	if d < 0 || d > 5 {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return CompassName(d.Angle(PointyTop))
}

// CompassName maps a screen angle (clockwise from east, y down) to one of
// eight compass names.
func CompassName(angle float64) string {
	names := [8]string{"East", "SouthEast", "South", "SouthWest", "West", "NorthWest", "North", "NorthEast"}
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return names[int(math.Floor((a+22.5)/45))%8]
}

// Neighbor returns p moved one step in direction d.
func Neighbor(p Point, d Direction) Point { return p.Add(d.Vector()) }

// NearestDirection returns the direction whose screen angle is closest to
// angle (degrees, clockwise from east).
func NearestDirection(angle float64, o Orientation) Direction {
	return Direction(nearestAngle(o.EdgeAngles(), angle))
}

// NearestCorner returns the index, as used by Layout.Corners, of the corner
// whose screen angle is closest to angle.
func NearestCorner(angle float64, o Orientation) int {
	return nearestAngle(o.CornerAngles(), angle)
}

func nearestAngle(angles [6]float64, angle float64) int {
	best, bestDiff := 0, math.Inf(1)
	for i, a := range angles {
		if diff := angleDiff(a, angle); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// angleDiff is the unsigned difference between two angles, in [0, 180].
func angleDiff(a, b float64) float64 {
	diff := math.Abs(math.Mod(a-b, 360))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
