package world

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rob-myers/npc-cli-sub000/internal/doorstate"
	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/gmgraph"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
	"github.com/rob-myers/npc-cli-sub000/internal/roomgraph"
)

// ErrNotLoaded is returned by queries before the first Load.
var ErrNotLoaded = errors.New("world not loaded")

// World owns the navigation graphs of the current map.
// Singleton pattern: use Instance() to access the process-wide world.
//
// Load is the only writer and rebuilds everything under the write lock;
// queries run under the read lock and never observe a half-built graph.
type World struct {
	mu sync.RWMutex

	name        string
	regions     []*layout.Region
	gm          *gmgraph.Graph
	rooms       *roomgraph.Graph
	fingerprint string

	opts  gmgraph.Options
	doors *doorstate.Store // survives reloads
}

var (
	instance *World
	once     sync.Once
)

// Instance returns singleton World instance
func Instance() *World {
	once.Do(func() {
		instance = New(gmgraph.Options{}, nil)
	})
	return instance
}

// New creates an empty world. Door state is read from doors at query time;
// a nil store is replaced by an empty one (every door closed).
func New(opts gmgraph.Options, doors *doorstate.Store) *World {
	if doors == nil {
		doors = doorstate.New()
	}
	return &World{opts: opts, doors: doors}
}

// Configure replaces the graph options used by the next Load.
func (w *World) Configure(opts gmgraph.Options) {
	w.mu.Lock()
	w.opts = opts
	w.mu.Unlock()
}

// Load builds both graphs for the given regions and swaps them in.
// On error the previous map stays loaded.
func (w *World) Load(name string, regions []*layout.Region) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	gm, err := gmgraph.FromRegions(regions, w.opts)
	if err != nil {
		return fmt.Errorf("building region graph for %s: %w", name, err)
	}
	fp, err := layout.Fingerprint(regions)
	if err != nil {
		return fmt.Errorf("fingerprinting %s: %w", name, err)
	}
	rooms := roomgraph.FromRegionGraph(gm)

	w.disposeLocked()
	w.name = name
	w.regions = regions
	w.gm = gm
	w.rooms = rooms
	w.fingerprint = fp

	slog.Info("world loaded", "map", name, "regions", len(regions), "fingerprint", fp[:12])
	return nil
}

// Reset unloads the current map. Door state is kept.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disposeLocked()
	w.name = ""
	w.regions = nil
	w.gm = nil
	w.rooms = nil
	w.fingerprint = ""
}

func (w *World) disposeLocked() {
	if w.rooms != nil {
		w.rooms.Dispose()
	}
	if w.gm != nil {
		w.gm.Dispose()
	}
}

// Doors returns the door state store.
func (w *World) Doors() *doorstate.Store {
	return w.doors
}

// Name returns the loaded map name, empty if none.
func (w *World) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Regions returns the loaded regions.
func (w *World) Regions() []*layout.Region {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.regions
}

// Fingerprint returns the layout fingerprint of the loaded map.
func (w *World) Fingerprint() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fingerprint
}

// FindPath searches a region-level path under the current door state.
func (w *World) FindPath(src, dst geom.Vec) (*gmgraph.Path, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.gm == nil {
		return nil, ErrNotLoaded
	}
	return w.gm.FindPath(src, dst, w.doors)
}

// FindRoom returns the room containing p.
func (w *World) FindRoom(p geom.Vec, includeDoors bool) (gmgraph.RoomRef, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.gm == nil {
		return gmgraph.RoomRef{}, false
	}
	return w.gm.FindRoomContaining(p, includeDoors)
}

// RoomsAround returns the room containing p followed by the rooms one hop
// away from it. With openOnly, closed doors do not count as a hop.
func (w *World) RoomsAround(p geom.Vec, openOnly bool) ([]gmgraph.RoomRef, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.rooms == nil {
		return nil, ErrNotLoaded
	}
	room, ok := w.gm.FindRoomContaining(p, true)
	if !ok {
		return nil, fmt.Errorf("%w: %v", gmgraph.ErrPointNotInRegion, p)
	}

	var doors gmgraph.DoorState
	if openOnly {
		doors = w.doors
	}
	out := []gmgraph.RoomRef{room}
	for _, adj := range w.rooms.RoomsAdjacentToSet([]gmgraph.RoomRef{room}, doors) {
		if adj != room {
			out = append(out, adj)
		}
	}
	return out, nil
}

// Snapshot captures the loaded region graph.
func (w *World) Snapshot() (gmgraph.Snapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.gm == nil {
		return gmgraph.Snapshot{}, ErrNotLoaded
	}
	return w.gm.Snapshot()
}
