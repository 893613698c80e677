package layout

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
)

const (
	// DefaultEntryOffset is how far inside a doorway its entry points sit.
	DefaultEntryOffset = 12.0
	// DoorSnap widens door segments when classifying points on a doorway.
	DoorSnap = 2.0
)

// PrepareOptions controls geomorph validation.
type PrepareOptions struct {
	EntryOffset float64
	// Lenient downgrades missing door entries to warnings so that
	// half-authored tiles still load in editing tools.
	Lenient bool
}

// Prepare validates the geomorph and computes derived data: door entries,
// hull door ids, inferred hull door directions and lookup indexes.
// It is idempotent.
func (g *Geomorph) Prepare(opts PrepareOptions) error {
	if g.prepared {
		return nil
	}
	if opts.EntryOffset <= 0 {
		opts.EntryOffset = DefaultEntryOffset
	}

	if err := g.validate(); err != nil {
		return err
	}

	var missing []error
	g.hullDoorIDs = g.hullDoorIDs[:0]
	for i := range g.Doors {
		d := &g.Doors[i]
		d.Normal = d.Normal.Normalize()
		g.computeEntries(d, opts.EntryOffset)

		if d.Hull {
			g.hullDoorIDs = append(g.hullDoorIDs, i)
			if d.Direction == nil {
				d.Direction = directionFromNormal(d.Normal)
			}
		}

		if err := checkEntries(d); err != nil {
			err = fmt.Errorf("geomorph %s door %d: %w", g.Key, i, err)
			if !opts.Lenient {
				missing = append(missing, err)
				continue
			}
			slog.Warn("door entry missing", "geomorph", g.Key, "door", i, "rooms", d.RoomIDs)
		}
	}
	if len(missing) > 0 {
		return errors.Join(missing...)
	}

	g.buildIndexes()
	g.prepared = true
	return nil
}

func (g *Geomorph) validate() error {
	if g.Key == "" {
		return fmt.Errorf("%w: geomorph without key", ErrInvalidLayout)
	}
	if g.Bounds.Area() <= 0 {
		return fmt.Errorf("%w: geomorph %s has empty bounds", ErrInvalidLayout, g.Key)
	}
	validRoom := func(id int) bool {
		return id == NoRoom || (id >= 0 && id < len(g.Rooms))
	}
	for i, d := range g.Doors {
		if d.Normal.Length() == 0 {
			return fmt.Errorf("%w: geomorph %s door %d has zero normal", ErrInvalidLayout, g.Key, i)
		}
		if !validRoom(d.RoomIDs[0]) || !validRoom(d.RoomIDs[1]) {
			return fmt.Errorf("%w: geomorph %s door %d references unknown room %v", ErrInvalidLayout, g.Key, i, d.RoomIDs)
		}
		if d.RoomIDs[0] != NoRoom && d.RoomIDs[0] == d.RoomIDs[1] {
			return fmt.Errorf("%w: geomorph %s door %d joins room %d to itself", ErrInvalidLayout, g.Key, i, d.RoomIDs[0])
		}
	}
	for i, w := range g.Windows {
		if !validRoom(w.RoomIDs[0]) || !validRoom(w.RoomIDs[1]) {
			return fmt.Errorf("%w: geomorph %s window %d references unknown room %v", ErrInvalidLayout, g.Key, i, w.RoomIDs)
		}
	}
	return nil
}

func (g *Geomorph) computeEntries(d *Door, offset float64) {
	center := d.Center()
	for side, roomID := range d.RoomIDs {
		if roomID == NoRoom {
			d.Entries[side] = nil
			continue
		}
		sign := 1.0
		if side == 1 {
			sign = -1
		}
		e := center.Add(d.Normal.Scale(sign * offset))
		d.Entries[side] = &e
	}
}

// checkEntries: interior doors need a room on both sides, hull doors on one.
func checkEntries(d *Door) error {
	have := 0
	for _, e := range d.Entries {
		if e != nil {
			have++
		}
	}
	switch {
	case d.Hull && have == 0:
		return fmt.Errorf("%w: hull door touches no room", ErrMissingEntry)
	case !d.Hull && have < 2:
		return fmt.Errorf("%w: interior door has %d of 2 rooms", ErrMissingEntry, have)
	}
	return nil
}

func directionFromNormal(n geom.Vec) *geom.Direction {
	for _, d := range []geom.Direction{geom.North, geom.East, geom.South, geom.West} {
		if n.Near(d.Unit(), 1e-6) {
			return &d
		}
	}
	return nil
}

func (g *Geomorph) buildIndexes() {
	g.navByArea = sortedByArea(len(g.NavRects), func(i int) float64 { return g.NavRects[i].Area() })
	g.roomsByArea = sortedByArea(len(g.Rooms), func(i int) float64 { return g.Rooms[i].Rect.Area() })

	g.doorsByRoom = make([][]int, len(g.Rooms))
	for i, d := range g.Doors {
		for _, roomID := range d.RoomIDs {
			if roomID != NoRoom {
				g.doorsByRoom[roomID] = append(g.doorsByRoom[roomID], i)
			}
		}
	}
	g.windowsByRoom = make([][]int, len(g.Rooms))
	for i, w := range g.Windows {
		for _, roomID := range w.RoomIDs {
			if roomID != NoRoom {
				g.windowsByRoom[roomID] = append(g.windowsByRoom[roomID], i)
			}
		}
	}
}

func sortedByArea(n int, area func(int) float64) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		return cmp.Compare(area(a), area(b))
	})
	return ids
}
