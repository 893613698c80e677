// Package roomgraph connects the rooms of a loaded map through their doors
// and windows, across region boundaries included.
//
// Edges are directed and carry the doors and windows seen from the source
// room. Reachability is symmetric but payloads need not be: a hull door is
// attributed to the region it belongs to.
package roomgraph

import (
	"fmt"
	"log/slog"

	"github.com/zyedidia/generic/mapset"

	"github.com/rob-myers/npc-cli-sub000/internal/gmgraph"
	"github.com/rob-myers/npc-cli-sub000/internal/graph"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// DoorRef names a door of a placed region.
type DoorRef struct {
	RegionID int
	DoorID   int
}

// WindowRef names a window of a placed region.
type WindowRef struct {
	RegionID int
	WindowID int
}

// RoomEdge lists what joins two rooms, from the source room's side.
type RoomEdge struct {
	Doors   []DoorRef
	Windows []WindowRef
}

// Edge is a directed room-graph edge.
type Edge = graph.Edge[*RoomNode, *RoomEdge]

// RoomNode is one room of a placed region. Its A* centroid is the room
// centre in world space, which may lie outside a non-convex room.
type RoomNode struct {
	Ref gmgraph.RoomRef

	id    string
	astar graph.Payload
}

func (n *RoomNode) ID() string            { return n.id }
func (n *RoomNode) AStar() *graph.Payload { return &n.astar }

// RoomNodeID is the id of the node of a room.
func RoomNodeID(ref gmgraph.RoomRef) string {
	return fmt.Sprintf("room-%d-%d", ref.RegionID, ref.RoomID)
}

// Graph is the room graph of one loaded map.
type Graph struct {
	*graph.Graph[*RoomNode, *RoomEdge]

	gm    *gmgraph.Graph
	nodes [][]*RoomNode // [regionID][roomID]
}

// FromRegionGraph builds the room graph. Hull doors resolve to the room
// behind them through the region graph; sealed hull doors add no edge.
func FromRegionGraph(gm *gmgraph.Graph) *Graph {
	rg := &Graph{
		Graph: graph.New[*RoomNode, *RoomEdge](),
		gm:    gm,
		nodes: make([][]*RoomNode, len(gm.Regions())),
	}

	for _, r := range gm.Regions() {
		nodes := make([]*RoomNode, len(r.Geomorph.Rooms))
		for roomID, room := range r.Geomorph.Rooms {
			ref := gmgraph.RoomRef{RegionID: r.ID, RoomID: roomID}
			nodes[roomID] = &RoomNode{
				Ref:   ref,
				id:    RoomNodeID(ref),
				astar: graph.Payload{Centroid: r.ToWorld(room.Center), Cost: 1},
			}
			rg.RegisterNodes(nodes[roomID])
		}
		rg.nodes[r.ID] = nodes
	}

	for _, r := range gm.Regions() {
		for roomID := range r.Geomorph.Rooms {
			rg.connectDoors(r, roomID)
			rg.connectWindows(r, roomID)
		}
	}
	rg.ComputeNeighbours()

	slog.Info("room graph built", "rooms", rg.Len(), "edges", len(rg.Edges()))
	return rg
}

func (rg *Graph) connectDoors(r *layout.Region, roomID int) {
	src := rg.nodes[r.ID][roomID]
	for _, doorID := range r.Geomorph.DoorIDsOfRoom(roomID) {
		door := &r.Geomorph.Doors[doorID]

		var dst *RoomNode
		if hullDoorID := r.Geomorph.HullDoorID(doorID); hullDoorID != -1 {
			ctx := rg.gm.AdjacentRoomContext(r.ID, hullDoorID)
			if ctx == nil {
				continue
			}
			dst = rg.nodes[ctx.AdjRegionID][ctx.AdjRoomID]
		} else {
			other := door.OtherRoomID(roomID)
			if other == layout.NoRoom {
				continue
			}
			dst = rg.nodes[r.ID][other]
		}

		e := rg.edge(src, dst)
		e.Data.Doors = append(e.Data.Doors, DoorRef{RegionID: r.ID, DoorID: doorID})
	}
}

func (rg *Graph) connectWindows(r *layout.Region, roomID int) {
	src := rg.nodes[r.ID][roomID]
	for _, windowID := range r.Geomorph.WindowIDsOfRoom(roomID) {
		w := r.Geomorph.Windows[windowID]
		other := w.RoomIDs[0]
		if other == roomID {
			other = w.RoomIDs[1]
		}
		if other == layout.NoRoom || other == roomID {
			continue
		}
		e := rg.edge(src, rg.nodes[r.ID][other])
		e.Data.Windows = append(e.Data.Windows, WindowRef{RegionID: r.ID, WindowID: windowID})
	}
}

func (rg *Graph) edge(src, dst *RoomNode) *Edge {
	e, _ := rg.Connect(src, dst, &RoomEdge{})
	return e
}

// GetRoomNode returns the node of a room, or nil.
func (rg *Graph) GetRoomNode(ref gmgraph.RoomRef) *RoomNode {
	if ref.RegionID < 0 || ref.RegionID >= len(rg.nodes) {
		return nil
	}
	nodes := rg.nodes[ref.RegionID]
	if ref.RoomID < 0 || ref.RoomID >= len(nodes) {
		return nil
	}
	return nodes[ref.RoomID]
}

// EdgeBetween returns the edge from room a to room b as seen from a.
func (rg *Graph) EdgeBetween(a, b gmgraph.RoomRef) (*RoomEdge, bool) {
	src, dst := rg.GetRoomNode(a), rg.GetRoomNode(b)
	if src == nil || dst == nil {
		return nil, false
	}
	e, ok := rg.GetEdge(src, dst)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// AdjacentRoomIDs returns the rooms next to room in edge order. With a
// non-nil door state only rooms behind at least one open door are returned;
// windows are ignored in that case.
func (rg *Graph) AdjacentRoomIDs(room gmgraph.RoomRef, doors gmgraph.DoorState) []gmgraph.RoomRef {
	n := rg.GetRoomNode(room)
	if n == nil {
		return nil
	}
	var out []gmgraph.RoomRef
	for _, e := range rg.EdgesFrom(n) {
		if doors != nil && !anyOpen(e.Data.Doors, doors) {
			continue
		}
		out = append(out, e.Dst.Ref)
	}
	return out
}

// RoomsAdjacentToSet expands rooms by one hop through doors and non-frosted
// windows. With a non-nil door state, closed doors do not count. The result
// is deduplicated and keeps discovery order; a seed room only appears when
// it is adjacent to another seed.
func (rg *Graph) RoomsAdjacentToSet(rooms []gmgraph.RoomRef, doors gmgraph.DoorState) []gmgraph.RoomRef {
	seen := mapset.New[gmgraph.RoomRef]()
	var out []gmgraph.RoomRef
	for _, room := range rooms {
		n := rg.GetRoomNode(room)
		if n == nil {
			continue
		}
		for _, e := range rg.EdgesFrom(n) {
			if seen.Has(e.Dst.Ref) || !rg.passable(e.Data, doors) {
				continue
			}
			seen.Put(e.Dst.Ref)
			out = append(out, e.Dst.Ref)
		}
	}
	return out
}

func (rg *Graph) passable(data *RoomEdge, doors gmgraph.DoorState) bool {
	if len(data.Doors) > 0 && (doors == nil || anyOpen(data.Doors, doors)) {
		return true
	}
	for _, w := range data.Windows {
		if !rg.gm.Region(w.RegionID).Geomorph.Windows[w.WindowID].Frosted {
			return true
		}
	}
	return false
}

func anyOpen(refs []DoorRef, doors gmgraph.DoorState) bool {
	for _, d := range refs {
		if doors.IsOpen(d.RegionID, d.DoorID) {
			return true
		}
	}
	return false
}

// Dispose releases the region graph's cached lookups. The room graph must
// not be used afterwards.
func (rg *Graph) Dispose() {
	rg.gm.Dispose()
	rg.Reset()
	rg.nodes = nil
}
