package gmgraph

import (
	"errors"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

var (
	ErrPointNotInRegion   = errors.New("point not in any region")
	ErrNoPath             = errors.New("no path")
	ErrDuplicatePlacement = errors.New("duplicate placement")
)

// DoorState reports live door state. It is consulted while searching and
// never cached by the graph.
type DoorState interface {
	IsOpen(regionID, doorID int) bool
}

// AllOpen is a DoorState with every door open.
type AllOpen struct{}

func (AllOpen) IsOpen(int, int) bool { return true }

// DoorStateFunc adapts a function to DoorState.
type DoorStateFunc func(regionID, doorID int) bool

func (f DoorStateFunc) IsOpen(regionID, doorID int) bool { return f(regionID, doorID) }

// RoomLocator classifies a region-local point into a room.
type RoomLocator interface {
	LocateRoom(r *layout.Region, local geom.Vec, includeDoors bool) (roomID int, ok bool)
}

// OutlineLocator classifies points with the geomorph's room rectangles.
type OutlineLocator struct{}

func (OutlineLocator) LocateRoom(r *layout.Region, local geom.Vec, includeDoors bool) (int, bool) {
	return r.Geomorph.RoomContaining(local, includeDoors)
}

// RoomRef identifies a room of a placed region.
type RoomRef struct {
	RegionID int `msgpack:"g" yaml:"region"`
	RoomID   int `msgpack:"r" yaml:"room"`
}

// Costs are the A* entry costs written before every search.
type Costs struct {
	Region     float64 `yaml:"region"`
	OpenDoor   float64 `yaml:"open_door"`
	ClosedDoor float64 `yaml:"closed_door"`
}

// DefaultCosts make a closed door expensive but never impassable.
var DefaultCosts = Costs{Region: 1, OpenDoor: 1, ClosedDoor: 10000}

// DefaultGridSize is the spatial index cell size in world units.
const DefaultGridSize = 600.0

// Options configures FromRegions. Zero values fall back to defaults.
type Options struct {
	GridSize float64
	Costs    Costs
	Locator  RoomLocator
}

func (o Options) withDefaults() Options {
	if o.GridSize <= 0 {
		o.GridSize = DefaultGridSize
	}
	if o.Costs == (Costs{}) {
		o.Costs = DefaultCosts
	}
	if o.Locator == nil {
		o.Locator = OutlineLocator{}
	}
	return o
}
