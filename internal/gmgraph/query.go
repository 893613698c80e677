package gmgraph

import (
	"fmt"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/graph"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// RegionHit is the result of a point-location query.
type RegionHit struct {
	RegionID  int
	NavRectID int
	Node      *RegionNode
}

// FindRegionContaining locates the navmesh component containing p. When
// components overlap, the one with the smallest area wins.
func (gm *Graph) FindRegionContaining(p geom.Vec) (RegionHit, bool) {
	gx, gy := gm.cellOf(p)
	for _, regionID := range gm.grid[gridKey{gx: gx, gy: gy}] {
		r := gm.regions[regionID]
		navRectID := r.Geomorph.NavRectContaining(r.ToLocal(p))
		if navRectID == -1 {
			continue
		}
		return RegionHit{
			RegionID:  regionID,
			NavRectID: navRectID,
			Node:      gm.regionNodes[regionID][navRectID],
		}, true
	}
	return RegionHit{}, false
}

// FindRoomContaining locates the room containing p. Point classification
// itself is delegated to the configured RoomLocator.
func (gm *Graph) FindRoomContaining(p geom.Vec, includeDoors bool) (RoomRef, bool) {
	gx, gy := gm.cellOf(p)
	for _, regionID := range gm.grid[gridKey{gx: gx, gy: gy}] {
		r := gm.regions[regionID]
		if !r.WorldBounds().Outset(layout.DoorSnap).Contains(p) {
			continue
		}
		if roomID, ok := gm.opts.Locator.LocateRoom(r, r.ToLocal(p), includeDoors); ok {
			return RoomRef{RegionID: regionID, RoomID: roomID}, true
		}
	}
	return RoomRef{}, false
}

// Transition is one crossing between regions through a pair of identified
// hull doors.
type Transition struct {
	SrcRegionID   int
	SrcRoomID     int
	SrcDoorID     int
	SrcHullDoorID int
	SrcEntry      geom.Vec

	DstRegionID   int
	DstRoomID     int
	DstDoorID     int
	DstHullDoorID int
	DstEntry      geom.Vec
}

// Path is the result of FindPath.
type Path struct {
	Nodes       []Node       // region, door, door, region, …, region
	Transitions []Transition // one per region crossing, in order
	Cost        float64      // summed entry costs under the door state used
}

// FindPath searches a region-level path from src to dst under the given door
// state (nil means every door is open). Closed doors are expensive, not
// impassable, so a path through a closed door is still returned when it is
// the only one.
//
// Errors: ErrPointNotInRegion if src or dst lies outside every component,
// ErrNoPath if the components are not connected.
func (gm *Graph) FindPath(src, dst geom.Vec, doors DoorState) (*Path, error) {
	srcHit, ok := gm.FindRegionContaining(src)
	if !ok {
		return nil, fmt.Errorf("%w: src %v", ErrPointNotInRegion, src)
	}
	dstHit, ok := gm.FindRegionContaining(dst)
	if !ok {
		return nil, fmt.Errorf("%w: dst %v", ErrPointNotInRegion, dst)
	}
	if doors == nil {
		doors = AllOpen{}
	}

	gm.searchMu.Lock()
	defer gm.searchMu.Unlock()

	srcNode, dstNode := srcHit.Node, dstHit.Node
	srcCentroid, dstCentroid := srcNode.astar.Centroid, dstNode.astar.Centroid
	defer func() {
		srcNode.astar.Centroid = srcCentroid
		dstNode.astar.Centroid = dstCentroid
	}()

	costs := gm.opts.Costs
	nodes := graph.Search(gm.Graph, Node(srcNode), Node(dstNode), func(g *graph.Graph[Node, EdgeKind]) {
		srcNode.astar.Centroid = src
		dstNode.astar.Centroid = dst
		for _, n := range g.Nodes() {
			switch n := n.(type) {
			case *DoorNode:
				if doors.IsOpen(n.regionID, n.DoorID) {
					n.astar.Cost = costs.OpenDoor
				} else {
					n.astar.Cost = costs.ClosedDoor
				}
			case *RegionNode:
				n.astar.Cost = costs.Region
			}
		}
	})
	if nodes == nil {
		return nil, fmt.Errorf("%w: from region %d to region %d", ErrNoPath, srcHit.RegionID, dstHit.RegionID)
	}

	path := &Path{Nodes: nodes}
	for i, n := range nodes {
		if i > 0 {
			path.Cost += n.AStar().Cost
		}
	}
	path.Transitions = gm.transitions(nodes)
	return path, nil
}

// transitions picks the door→door steps out of a node sequence.
func (gm *Graph) transitions(nodes []Node) []Transition {
	var out []Transition
	for i := 1; i < len(nodes); i++ {
		a, okA := nodes[i-1].(*DoorNode)
		b, okB := nodes[i].(*DoorNode)
		if !okA || !okB || a.regionID == b.regionID {
			continue
		}
		out = append(out, Transition{
			SrcRegionID:   a.regionID,
			SrcRoomID:     gm.doorRoomID(a),
			SrcDoorID:     a.DoorID,
			SrcHullDoorID: a.HullDoorID,
			SrcEntry:      a.Entry,
			DstRegionID:   b.regionID,
			DstRoomID:     gm.doorRoomID(b),
			DstDoorID:     b.DoorID,
			DstHullDoorID: b.HullDoorID,
			DstEntry:      b.Entry,
		})
	}
	return out
}

func (gm *Graph) doorRoomID(n *DoorNode) int {
	return gm.regions[n.regionID].Geomorph.Doors[n.DoorID].RoomID()
}
