// Package layout describes placed map tiles ("geomorphs") as the navigation
// graphs consume them: navmesh component rectangles, doors, windows and
// rooms in tile-local coordinates, plus the affine placement into the world.
//
// Geomorph templates are loaded once and shared by every Region placing them.
// Nothing here is mutated after Prepare; door open/closed state lives elsewhere.
package layout

import (
	"errors"
	"slices"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
)

// NoRoom marks a door or window side that touches no room.
const NoRoom = -1

var (
	ErrInvalidLayout    = errors.New("invalid layout")
	ErrMissingEntry     = errors.New("door entry missing")
	ErrUnknownGeomorph  = errors.New("unknown geomorph")
	ErrInvalidTransform = errors.New("transform is not invertible")
)

// Door is an opening between two rooms, or between a room and the outside
// of the tile (a hull door).
//
// RoomIDs[0] is the room on the +Normal side, RoomIDs[1] the room on the
// -Normal side. Hull door normals point out of the tile, so their room is
// normally RoomIDs[1].
type Door struct {
	Seg       [2]geom.Vec     `yaml:"seg"`
	Normal    geom.Vec        `yaml:"normal"`
	RoomIDs   [2]int          `yaml:"rooms"`
	Hull      bool            `yaml:"hull"`
	Direction *geom.Direction `yaml:"direction,omitempty"`

	// Entries[i] is a point just inside the doorway on side i, nil when
	// that side has no room. Filled by Geomorph.Prepare.
	Entries [2]*geom.Vec `yaml:"-"`
}

// Center returns the midpoint of the door segment.
func (d *Door) Center() geom.Vec {
	return d.Seg[0].Midpoint(d.Seg[1])
}

// Rect returns the bounds of the door segment.
func (d *Door) Rect() geom.Rect {
	return geom.RectFromPoints(d.Seg[0], d.Seg[1])
}

// RoomID returns the first room touching the door, or NoRoom.
// For hull doors this is the room inside the tile.
func (d *Door) RoomID() int {
	for _, id := range d.RoomIDs {
		if id != NoRoom {
			return id
		}
	}
	return NoRoom
}

// OtherRoomID returns the room on the far side of the door from roomID.
func (d *Door) OtherRoomID(roomID int) int {
	switch roomID {
	case d.RoomIDs[0]:
		return d.RoomIDs[1]
	case d.RoomIDs[1]:
		return d.RoomIDs[0]
	}
	return NoRoom
}

// Entry returns the entry point on the side of roomID, falling back to any
// computed entry.
func (d *Door) Entry(roomID int) (geom.Vec, bool) {
	for i, id := range d.RoomIDs {
		if id == roomID && d.Entries[i] != nil {
			return *d.Entries[i], true
		}
	}
	for _, e := range d.Entries {
		if e != nil {
			return *e, true
		}
	}
	return geom.Vec{}, false
}

// Window joins rooms visually. A window touching only one room faces outside.
type Window struct {
	Seg     [2]geom.Vec `yaml:"seg"`
	RoomIDs [2]int      `yaml:"rooms"`
	Frosted bool        `yaml:"frosted"`
}

// Room is one room of a geomorph. Rect bounds its outline and backs the
// default point classifier; Center need not lie inside a non-convex room.
type Room struct {
	Name   string    `yaml:"name,omitempty"`
	Center geom.Vec  `yaml:"center"`
	Rect   geom.Rect `yaml:"rect"`
}

// Geomorph is a pre-authored tile in local coordinates.
type Geomorph struct {
	Key      string      `yaml:"key"`
	Bounds   geom.Rect   `yaml:"bounds"`
	NavRects []geom.Rect `yaml:"nav_rects"`
	Doors    []Door      `yaml:"doors"`
	Windows  []Window    `yaml:"windows"`
	Rooms    []Room      `yaml:"rooms"`

	hullDoorIDs   []int // door ids of hull doors, in door order
	navByArea     []int // nav rect ids sorted by ascending area
	roomsByArea   []int
	doorsByRoom   [][]int
	windowsByRoom [][]int
	prepared      bool
}

// HullDoorIDs returns the door ids of the hull doors; a hull door id is an
// index into this slice.
func (g *Geomorph) HullDoorIDs() []int {
	return g.hullDoorIDs
}

// HullDoor returns the door behind the given hull door id.
func (g *Geomorph) HullDoor(hullDoorID int) *Door {
	return &g.Doors[g.hullDoorIDs[hullDoorID]]
}

// HullDoorID maps a door id to its hull door id, or -1 for interior doors.
func (g *Geomorph) HullDoorID(doorID int) int {
	return slices.Index(g.hullDoorIDs, doorID)
}

// DoorIDsOfRoom returns the doors touching roomID.
func (g *Geomorph) DoorIDsOfRoom(roomID int) []int {
	if roomID < 0 || roomID >= len(g.doorsByRoom) {
		return nil
	}
	return g.doorsByRoom[roomID]
}

// WindowIDsOfRoom returns the windows touching roomID.
func (g *Geomorph) WindowIDsOfRoom(roomID int) []int {
	if roomID < 0 || roomID >= len(g.windowsByRoom) {
		return nil
	}
	return g.windowsByRoom[roomID]
}

// NavRectContaining returns the smallest nav rect containing p, or -1.
func (g *Geomorph) NavRectContaining(p geom.Vec) int {
	for _, i := range g.navByArea {
		if g.NavRects[i].Contains(p) {
			return i
		}
	}
	return -1
}

// NavRectsByArea returns nav rect ids ordered by ascending area.
func (g *Geomorph) NavRectsByArea() []int {
	return g.navByArea
}

// RoomContaining classifies a local point. Rooms are tested smallest first.
// With includeDoors, a point on a doorway resolves to the room whose entry
// is nearest.
func (g *Geomorph) RoomContaining(p geom.Vec, includeDoors bool) (int, bool) {
	for _, i := range g.roomsByArea {
		if g.Rooms[i].Rect.Contains(p) {
			return i, true
		}
	}
	if !includeDoors {
		return NoRoom, false
	}
	for i := range g.Doors {
		d := &g.Doors[i]
		if !d.Rect().Outset(DoorSnap).Contains(p) {
			continue
		}
		best, bestDist := NoRoom, 0.0
		for side, e := range d.Entries {
			if e == nil || d.RoomIDs[side] == NoRoom {
				continue
			}
			if dist := e.Distance(p); best == NoRoom || dist < bestDist {
				best, bestDist = d.RoomIDs[side], dist
			}
		}
		if best != NoRoom {
			return best, true
		}
	}
	return NoRoom, false
}

// Region is one placement of a geomorph in the world.
type Region struct {
	ID        int
	Transform geom.Transform
	Geomorph  *Geomorph

	inverse geom.Transform
}

// NewRegion places g with transform t. The geomorph must be prepared.
func NewRegion(id int, g *Geomorph, t geom.Transform) (*Region, error) {
	inv, ok := t.Inverse()
	if !ok {
		return nil, ErrInvalidTransform
	}
	return &Region{ID: id, Transform: t, Geomorph: g, inverse: inv}, nil
}

// Key returns the geomorph key.
func (r *Region) Key() string {
	return r.Geomorph.Key
}

// WorldBounds returns the placed tile bounds.
func (r *Region) WorldBounds() geom.Rect {
	return r.Transform.ApplyRect(r.Geomorph.Bounds)
}

// ToWorld maps a local point into the world.
func (r *Region) ToWorld(p geom.Vec) geom.Vec {
	return r.Transform.Apply(p)
}

// ToLocal maps a world point into tile-local coordinates.
func (r *Region) ToLocal(p geom.Vec) geom.Vec {
	return r.inverse.Apply(p)
}

// WorldNavRect returns nav rect i in world space.
func (r *Region) WorldNavRect(i int) geom.Rect {
	return r.Transform.ApplyRect(r.Geomorph.NavRects[i])
}

// WorldDoorRect returns the bounds of door doorID in world space.
func (r *Region) WorldDoorRect(doorID int) geom.Rect {
	return r.Transform.ApplyRect(r.Geomorph.Doors[doorID].Rect())
}
