package geom

import (
	"fmt"
	"strings"
)

// Direction is a compass direction in map space (north is -y).
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionUnits = [4]Vec{
	North: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: 1},
	West:  {X: -1, Y: 0},
}

var directionNames = [4]string{"n", "e", "s", "w"}

// Unit returns the unit vector pointing in direction d.
func (d Direction) Unit() Vec {
	return directionUnits[d&3]
}

// Opposite returns the direction rotated by 180°.
func (d Direction) Opposite() Direction {
	return (d + 2) & 3
}

// Transform resolves d through the linear part of t. It fails unless t is
// one of the eight 90° rotations/reflections.
func (d Direction) Transform(t Transform) (Direction, bool) {
	if !t.Orthogonal() {
		return d, false
	}
	u := t.ApplyVector(d.Unit())
	for i, w := range directionUnits {
		if u == w {
			return Direction(i), true
		}
	}
	return d, false
}

func (d Direction) String() string {
	return directionNames[d&3]
}

// ParseDirection parses "n", "e", "s", "w" (or the full names).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
