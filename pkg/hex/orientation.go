package hex

import (
	"fmt"
	"math"
	"strings"
)

// Orientation selects how hexagons sit on screen.
type Orientation int

const (
	// PointyTop puts a vertex at the top; rows are offset.
	PointyTop Orientation = iota
	// FlatTop puts an edge at the top; columns are offset.
	FlatTop
)

var sqrt3 = math.Sqrt(3)

// matrix holds the forward (hex to pixel) and inverse (pixel to hex)
// transforms plus the angle of the first corner in degrees.
type matrix struct {
	f0, f1, f2, f3 float64
	b0, b1, b2, b3 float64
	corner         float64
}

var (
	pointyMatrix = matrix{
		f0: sqrt3, f1: sqrt3 / 2, f2: 0, f3: 3.0 / 2,
		b0: sqrt3 / 3, b1: -1.0 / 3, b2: 0, b3: 2.0 / 3,
		corner: 30,
	}
	flatMatrix = matrix{
		f0: 3.0 / 2, f1: 0, f2: sqrt3 / 2, f3: sqrt3,
		b0: 2.0 / 3, b1: 0, b2: -1.0 / 3, b3: sqrt3 / 3,
		corner: 0,
	}
)

func (o Orientation) matrix() matrix {
	if o == FlatTop {
		return flatMatrix
	}
	return pointyMatrix
}

// cornerOffset is the angle of corner 0.
func (o Orientation) cornerOffset() float64 { return o.matrix().corner }

// edgeOffset is the angle of direction 0, midway between two corners.
func (o Orientation) edgeOffset() float64 { return o.Toggle().cornerOffset() }

// Toggle returns the other orientation.
func (o Orientation) Toggle() Orientation {
	if o == FlatTop {
		return PointyTop
	}
	return FlatTop
}

// CornerAngles returns the six corner angles in drawing order.
func (o Orientation) CornerAngles() [6]float64 {
	var out [6]float64
	for i := range out {
		out[i] = o.cornerOffset() + 60*float64(i)
	}
	return out
}

// EdgeAngles returns the angles of the six edge midpoints, indexed by Direction.
func (o Orientation) EdgeAngles() [6]float64 {
	var out [6]float64
	for i, d := range Directions {
		out[i] = d.Angle(o)
	}
	return out
}

func (o Orientation) String() string {
	switch o {
	case PointyTop:
		return "pointy_top"
	case FlatTop:
		return "flat_top"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// ParseOrientation accepts "pointy_top"/"pointy" and "flat_top"/"flat",
// case-insensitively, with '-' or '_' separators.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "pointy_top", "pointy":
		return PointyTop, nil
	case "flat_top", "flat":
		return FlatTop, nil
	}
	return PointyTop, fmt.Errorf("hex: unknown orientation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	if o != PointyTop && o != FlatTop {
		return nil, fmt.Errorf("hex: unknown orientation %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so orientations can be
// read from YAML and JSON.
func (o *Orientation) UnmarshalText(text []byte) error {
	v, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
