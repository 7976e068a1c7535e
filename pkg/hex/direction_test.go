package hex

import (
	"math"
	"testing"
)

func TestNeighborsAreAdjacentAndDistinct(t *testing.T) {
	for _, p := range []Point{Origin, Axial(4, -9), Axial(-2, -2)} {
		seen := map[Point]bool{}
		for _, d := range Directions {
			n := Neighbor(p, d)
			if Distance(p, n) != 1 {
				t.Fatalf("neighbor %v of %v in %v is not adjacent", n, p, d)
			}
			seen[n] = true
		}
		if len(seen) != 6 {
			t.Fatalf("expected 6 distinct neighbors, got %d", len(seen))
		}
		if p.Neighbors() != [6]Point{
			p.Neighbor(East), p.Neighbor(SouthEast), p.Neighbor(SouthWest),
			p.Neighbor(West), p.Neighbor(NorthWest), p.Neighbor(NorthEast),
		} {
			t.Fatalf("Neighbors order differs from direction order")
		}
	}
}

func TestOpposite(t *testing.T) {
	for _, d := range Directions {
		if d.Vector().Add(d.Opposite().Vector()) != Origin {
			t.Fatalf("%v and %v do not cancel", d, d.Opposite())
		}
	}
}

func TestDirectionNames(t *testing.T) {
	pointy := []string{"East", "SouthEast", "SouthWest", "West", "NorthWest", "NorthEast"}
	flat := []string{"SouthEast", "South", "SouthWest", "NorthWest", "North", "NorthEast"}
	for i, d := range Directions {
		if got := d.Name(PointyTop); got != pointy[i] {
			t.Fatalf("pointy %d: expected %s, got %s", i, pointy[i], got)
		}
		if got := d.Name(FlatTop); got != flat[i] {
			t.Fatalf("flat %d: expected %s, got %s", i, flat[i], got)
		}
	}
	if East.String() != "East" {
		t.Fatalf("expected East, got %s", East.String())
	}
}

func TestDirectionAnglesMatchPixelLayout(t *testing.T) {
	for _, o := range []Orientation{PointyTop, FlatTop} {
		for _, d := range Directions {
			c := ToPixel(d.Vector(), o, 1)
			if got := NearestDirection(angleOf(c.X(), c.Y()), o); got != d {
				t.Fatalf("%v: pixel angle of %v points to %v", o, d, got)
			}
		}
	}
}

func TestNearestDirectionWraps(t *testing.T) {
	if got := NearestDirection(355, PointyTop); got != East {
		t.Fatalf("expected East, got %v", got)
	}
	// flat-top NorthWest points straight up
	if got := NearestDirection(-70, FlatTop); got != NorthWest {
		t.Fatalf("expected NorthWest, got %v", got)
	}
}

func TestNearestCorner(t *testing.T) {
	cases := []struct {
		o     Orientation
		angle float64
		want  int
	}{
		{PointyTop, 35, 0},
		{PointyTop, 359, 5},
		{PointyTop, -50, 5},
		{PointyTop, 95, 1},
		{PointyTop, 265, 4},
		{FlatTop, 359, 0},
		{FlatTop, 100, 2},
		{FlatTop, 185, 3},
		{FlatTop, -55, 5},
		{FlatTop, 720, 0},
	}
	for _, tc := range cases {
		if got := NearestCorner(tc.angle, tc.o); got != tc.want {
			t.Errorf("%v at %v: expected corner %d, got %d", tc.o, tc.angle, tc.want, got)
		}
	}
}

func angleOf(x, y float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }
