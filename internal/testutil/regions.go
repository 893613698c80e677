package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// DoorWidth is the width of every door built by the fixtures below.
const DoorWidth = 20.0

// HullDoor returns a hull door centred on the given side of a size×size tile,
// opening into roomID.
func HullDoor(size float64, side geom.Direction, roomID int) layout.Door {
	return HullDoorAt(size, side, size/2, roomID)
}

// HullDoorAt is HullDoor with the door centre at offset along the side.
func HullDoorAt(size float64, side geom.Direction, offset float64, roomID int) layout.Door {
	lo, hi := offset-DoorWidth/2, offset+DoorWidth/2
	var seg [2]geom.Vec
	switch side {
	case geom.North:
		seg = [2]geom.Vec{geom.V(lo, 0), geom.V(hi, 0)}
	case geom.East:
		seg = [2]geom.Vec{geom.V(size, lo), geom.V(size, hi)}
	case geom.South:
		seg = [2]geom.Vec{geom.V(lo, size), geom.V(hi, size)}
	case geom.West:
		seg = [2]geom.Vec{geom.V(0, lo), geom.V(0, hi)}
	}
	dir := side
	return layout.Door{
		Seg:       seg,
		Normal:    side.Unit(),
		RoomIDs:   [2]int{layout.NoRoom, roomID},
		Hull:      true,
		Direction: &dir,
	}
}

// SquareGeomorph is a size×size tile with a single room, a single nav rect
// and one hull door centred on each of the given sides.
func SquareGeomorph(key string, size float64, sides ...geom.Direction) *layout.Geomorph {
	g := &layout.Geomorph{
		Key:      key,
		Bounds:   geom.R(0, 0, size, size),
		NavRects: []geom.Rect{geom.R(0, 0, size, size)},
		Rooms: []layout.Room{
			{Name: "main", Center: geom.V(size/2, size/2), Rect: geom.R(0, 0, size, size)},
		},
	}
	for _, side := range sides {
		g.Doors = append(g.Doors, HullDoor(size, side, 0))
	}
	return g
}

// SplitGeomorph is a size×size tile cut into a west room 0 and an east
// room 1, with a west hull door into room 0 and an east hull door into
// room 1 (hull door ids 0 and 1).
//
// With interiorDoor the rooms share one nav rect and are joined by door 2
// at x = size/2. Without it each room has its own nav rect and the two
// components are disconnected inside the tile.
func SplitGeomorph(key string, size float64, interiorDoor bool) *layout.Geomorph {
	half := size / 2
	g := &layout.Geomorph{
		Key:    key,
		Bounds: geom.R(0, 0, size, size),
		Rooms: []layout.Room{
			{Name: "west", Center: geom.V(half/2, half), Rect: geom.R(0, 0, half, size)},
			{Name: "east", Center: geom.V(half+half/2, half), Rect: geom.R(half, 0, half, size)},
		},
		Doors: []layout.Door{
			HullDoor(size, geom.West, 0),
			HullDoor(size, geom.East, 1),
		},
	}
	if !interiorDoor {
		g.NavRects = []geom.Rect{geom.R(0, 0, half-5, size), geom.R(half+5, 0, half-5, size)}
		return g
	}
	g.NavRects = []geom.Rect{geom.R(0, 0, size, size)}
	g.Doors = append(g.Doors, layout.Door{
		Seg:     [2]geom.Vec{geom.V(half, half-DoorWidth/2), geom.V(half, half+DoorWidth/2)},
		Normal:  geom.V(1, 0),
		RoomIDs: [2]int{1, 0},
	})
	return g
}

// BuildRegions prepares the geomorphs and places them, failing the test on
// any layout error. Region ids follow the placement order.
func BuildRegions(tb testing.TB, geomorphs []*layout.Geomorph, placements ...layout.Placement) []*layout.Region {
	tb.Helper()
	m, err := layout.BuildMap(tb.Name(), geomorphs, placements, layout.PrepareOptions{})
	require.NoError(tb, err)
	return m.Regions
}

// Place is shorthand for a layout.Placement.
func Place(key string, t geom.Transform) layout.Placement {
	return layout.Placement{Key: key, Transform: t}
}

// EastWestPair places a tile "a" with an east hull door and a tile "b" with a
// west hull door side by side, so that the two doors meet at x = 100.
func EastWestPair(tb testing.TB) []*layout.Region {
	tb.Helper()
	return BuildRegions(tb,
		[]*layout.Geomorph{
			SquareGeomorph("a", 100, geom.East),
			SquareGeomorph("b", 100, geom.West),
		},
		Place("a", geom.Identity),
		Place("b", geom.Translate(100, 0)),
	)
}
