package hex

import "errors"

var (
	// ErrInvalidCoordinate is returned when a cube triple does not satisfy q+r+s=0.
	ErrInvalidCoordinate = errors.New("hex: invalid cube coordinate")
	// ErrOutOfBounds is returned when a point lies outside a map's radius.
	ErrOutOfBounds = errors.New("hex: point out of bounds")
	// ErrAbsentKey is returned when no cell is stored at a point.
	ErrAbsentKey = errors.New("hex: no cell at point")
	// ErrInvalidRadius is returned for negative radii.
	ErrInvalidRadius = errors.New("hex: radius must be non-negative")
	// ErrInvalidSize is returned for non-positive cell sizes.
	ErrInvalidSize = errors.New("hex: cell size must be positive")
)
