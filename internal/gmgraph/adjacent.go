package gmgraph

import (
	"log/slog"

	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// AdjacentRoomCtx describes what lies behind a non-sealed hull door.
type AdjacentRoomCtx struct {
	AdjRegionID   int
	AdjHullDoorID int
	AdjDoorID     int
	AdjRoomID     int
}

// AdjacentRoomContext returns the hull door identified with the given one
// and the room touching it on the far side, or nil for sealed doors.
//
// Results are memoised per (regionID, hullDoorID). They depend on geometry
// only, so the cache survives door state changes and is cleared by Dispose.
func (gm *Graph) AdjacentRoomContext(regionID, hullDoorID int) *AdjacentRoomCtx {
	key := adjKey{regionID: regionID, hullDoorID: hullDoorID}

	gm.cacheMu.RLock()
	ctx, ok := gm.adjCache[key]
	gm.cacheMu.RUnlock()
	if ok {
		return ctx
	}

	ctx = gm.computeAdjacentRoomContext(regionID, hullDoorID)

	gm.cacheMu.Lock()
	gm.adjCache[key] = ctx
	gm.cacheMu.Unlock()
	return ctx
}

func (gm *Graph) computeAdjacentRoomContext(regionID, hullDoorID int) *AdjacentRoomCtx {
	other := gm.GetAdjacentDoorNode(regionID, hullDoorID)
	if other == nil {
		return nil
	}
	roomID := gm.doorRoomID(other)
	if roomID == layout.NoRoom {
		slog.Warn("identified hull door touches no room",
			"region", other.regionID, "hull_door", other.HullDoorID)
		return nil
	}
	return &AdjacentRoomCtx{
		AdjRegionID:   other.regionID,
		AdjHullDoorID: other.HullDoorID,
		AdjDoorID:     other.DoorID,
		AdjRoomID:     roomID,
	}
}

// Dispose drops the memoised adjacency lookups.
func (gm *Graph) Dispose() {
	gm.cacheMu.Lock()
	clear(gm.adjCache)
	gm.cacheMu.Unlock()
}
