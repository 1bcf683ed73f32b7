package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Bounds is an axis-aligned latitude/longitude box. Edges are inclusive.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// CampusBounds frames the default playing area.
var CampusBounds = Bounds{
	North: 41.512,
	South: 41.498,
	East:  -81.595,
	West:  -81.615,
}

// CampusCenter is where the guess map opens.
var CampusCenter = Coordinate{Latitude: 41.5045, Longitude: -81.6087}

// Bound converts b to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Validate checks that every corner is a valid coordinate and the box is not inverted.
func (b Bounds) Validate() error {
	for _, c := range []Coordinate{{b.South, b.West}, {b.North, b.East}} {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("bounds: %w", err)
		}
	}
	if b.South > b.North || b.West > b.East {
		return fmt.Errorf("bounds: %w: inverted box %+v", ErrInvalidCoordinate, b)
	}
	return nil
}

// Contains reports whether c lies within b.
func (b Bounds) Contains(c Coordinate) bool {
	return b.Bound().Contains(c.Point())
}

// Require returns ErrOutsideBounds when c is not inside b.
func (b Bounds) Require(c Coordinate) error {
	if !b.Contains(c) {
		return fmt.Errorf("%w: %s", ErrOutsideBounds, c)
	}
	return nil
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Coordinate {
	return FromPoint(b.Bound().Center())
}
