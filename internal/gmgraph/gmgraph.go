// Package gmgraph stitches placed geomorphs into one navigation graph.
//
// Every navmesh component of a region becomes a RegionNode and every hull
// door a DoorNode. Region nodes connect to their own hull doors (local
// edges); hull doors of different regions connect when their world-space
// rectangles meet (global edges). Paths therefore alternate
// region, door, door, region, …
package gmgraph

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/graph"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

type gridKey struct {
	gx, gy int
}

type adjKey struct {
	regionID, hullDoorID int
}

// Graph is the region graph of one loaded map. Build it with FromRegions;
// rebuild it whenever the set of placed regions changes.
type Graph struct {
	*graph.Graph[Node, EdgeKind]

	regions     []*layout.Region
	regionNodes [][]*RegionNode // [regionID][navRectID]
	doorNodes   [][]*DoorNode   // [regionID][hullDoorID]
	grid        map[gridKey][]int
	opts        Options

	searchMu sync.Mutex // FindPath rewrites payloads

	cacheMu  sync.RWMutex
	adjCache map[adjKey]*AdjacentRoomCtx
}

// FromRegions builds the region graph. Geometry problems in a single door
// are logged and leave a degraded node behind; they never abort the build.
func FromRegions(regions []*layout.Region, opts Options) (*Graph, error) {
	gm := &Graph{
		Graph:       graph.New[Node, EdgeKind](),
		regions:     regions,
		regionNodes: make([][]*RegionNode, len(regions)),
		doorNodes:   make([][]*DoorNode, len(regions)),
		grid:        make(map[gridKey][]int),
		opts:        opts.withDefaults(),
		adjCache:    make(map[adjKey]*AdjacentRoomCtx),
	}

	seen := make(map[string]int, len(regions))
	for i, r := range regions {
		if r.ID != i {
			return nil, fmt.Errorf("region at index %d has id %d", i, r.ID)
		}
		placement := r.Key() + r.Transform.String()
		if prev, dup := seen[placement]; dup {
			return nil, fmt.Errorf("%w: regions %d and %d place %s with %s", ErrDuplicatePlacement, prev, i, r.Key(), r.Transform)
		}
		seen[placement] = i
	}

	for _, r := range regions {
		gm.addRegionNodes(r)
		gm.addDoorNodes(r)
	}
	for _, r := range regions {
		gm.connectLocal(r)
	}
	global := gm.connectGlobal()
	for _, r := range regions {
		gm.indexRegion(r)
	}
	gm.ComputeNeighbours()

	slog.Info("region graph built",
		"regions", len(regions),
		"nodes", gm.Len(),
		"edges", len(gm.Edges()),
		"global_edges", global,
		"grid_cells", len(gm.grid),
	)
	return gm, nil
}

func (gm *Graph) addRegionNodes(r *layout.Region) {
	g := r.Geomorph
	nodes := make([]*RegionNode, len(g.NavRects))
	for navRectID := range g.NavRects {
		rect := r.WorldNavRect(navRectID)
		n := &RegionNode{
			id:        RegionNodeID(g.Key, r.Transform, navRectID),
			regionID:  r.ID,
			RegionKey: g.Key,
			Transform: r.Transform,
			NavRectID: navRectID,
			Rect:      rect,
			astar:     graph.Payload{Centroid: rect.Center(), Cost: gm.opts.Costs.Region},
		}
		nodes[navRectID] = n
		gm.RegisterNodes(n)
	}
	gm.regionNodes[r.ID] = nodes
}

func (gm *Graph) addDoorNodes(r *layout.Region) {
	g := r.Geomorph
	nodes := make([]*DoorNode, len(g.HullDoorIDs()))
	for hullDoorID, doorID := range g.HullDoorIDs() {
		door := &g.Doors[doorID]

		localEntry, ok := door.Entry(door.RoomID())
		if !ok {
			localEntry = door.Center()
		}
		navRectID := g.NavRectContaining(localEntry)
		if navRectID == -1 {
			navRectID = g.NavRectContaining(door.Center())
		}
		if navRectID == -1 {
			slog.Warn("hull door outside every nav rect",
				"region", r.ID, "geomorph", g.Key, "hull_door", hullDoorID, "door", doorID)
		}

		n := &DoorNode{
			id:         DoorNodeID(g.Key, r.Transform, hullDoorID),
			regionID:   r.ID,
			RegionKey:  g.Key,
			Transform:  r.Transform,
			HullDoorID: hullDoorID,
			DoorID:     doorID,
			NavRectID:  navRectID,
			Direction:  resolveDirection(r, hullDoorID, door),
			Sealed:     true,
			Rect:       r.WorldDoorRect(doorID),
			Entry:      r.ToWorld(localEntry),
			astar:      graph.Payload{Centroid: r.ToWorld(door.Center()), Cost: gm.opts.Costs.OpenDoor},
		}
		nodes[hullDoorID] = n
		gm.RegisterNodes(n)
	}
	gm.doorNodes[r.ID] = nodes
}

// resolveDirection maps the declared local direction of a hull door into
// world space. Only the eight 90° rotations/reflections resolve.
func resolveDirection(r *layout.Region, hullDoorID int, door *layout.Door) *geom.Direction {
	if door.Direction == nil {
		slog.Warn("hull door has no direction",
			"region", r.ID, "geomorph", r.Key(), "hull_door", hullDoorID)
		return nil
	}
	d, ok := door.Direction.Transform(r.Transform)
	if !ok {
		slog.Warn("hull door direction unresolvable",
			"region", r.ID, "geomorph", r.Key(), "hull_door", hullDoorID,
			"direction", door.Direction.String(), "transform", r.Transform.String())
		return nil
	}
	return &d
}

func (gm *Graph) connectLocal(r *layout.Region) {
	for _, door := range gm.doorNodes[r.ID] {
		if door.NavRectID == -1 {
			continue
		}
		region := gm.regionNodes[r.ID][door.NavRectID]
		gm.Connect(region, door, LocalEdge)
		gm.Connect(door, region, LocalEdge)
	}
}

// DoorTolerance is how far apart, in world units, two hull door rectangles
// may be and still be identified. It absorbs float error from non-integer
// placements.
const DoorTolerance = 1e-3

// connectGlobal identifies hull doors of distinct regions whose world
// rectangles meet within DoorTolerance. Regions are visited by ascending id
// and doors by ascending hull door id; a door is identified at most once, so
// the first candidate in that order wins.
func (gm *Graph) connectGlobal() int {
	count := 0
	for i, ri := range gm.regions {
		bi := ri.WorldBounds().Outset(DoorTolerance)
		for _, rj := range gm.regions[i+1:] {
			if !bi.Intersects(rj.WorldBounds()) {
				continue
			}
			for _, a := range gm.doorNodes[ri.ID] {
				if !a.Sealed {
					continue
				}
				ra := a.Rect.Outset(DoorTolerance)
				for _, b := range gm.doorNodes[rj.ID] {
					if !b.Sealed || !ra.Intersects(b.Rect) {
						continue
					}
					gm.Connect(a, b, GlobalEdge)
					gm.Connect(b, a, GlobalEdge)
					a.Sealed = false
					b.Sealed = false
					count++
					break
				}
			}
		}
	}
	return count
}

// indexRegion records the grid cells covered by the region's world bounds.
func (gm *Graph) indexRegion(r *layout.Region) {
	b := r.WorldBounds()
	gxMin, gyMin := gm.cellOf(geom.V(b.X, b.Y))
	gxMax, gyMax := gm.cellOf(geom.V(b.Right(), b.Bottom()))
	for gx := gxMin; gx <= gxMax; gx++ {
		for gy := gyMin; gy <= gyMax; gy++ {
			key := gridKey{gx: gx, gy: gy}
			gm.grid[key] = append(gm.grid[key], r.ID)
		}
	}
}

func (gm *Graph) cellOf(p geom.Vec) (int, int) {
	return int(math.Floor(p.X / gm.opts.GridSize)), int(math.Floor(p.Y / gm.opts.GridSize))
}

// Regions returns the regions the graph was built from, indexed by region id.
func (gm *Graph) Regions() []*layout.Region {
	return gm.regions
}

// Region returns the region with the given id, or nil.
func (gm *Graph) Region(regionID int) *layout.Region {
	if regionID < 0 || regionID >= len(gm.regions) {
		return nil
	}
	return gm.regions[regionID]
}

// Costs returns the costs written before each search.
func (gm *Graph) Costs() Costs {
	return gm.opts.Costs
}

// GetRegionNodes returns the region nodes of a region, indexed by nav rect id.
func (gm *Graph) GetRegionNodes(regionID int) []*RegionNode {
	if gm.Region(regionID) == nil {
		return nil
	}
	return gm.regionNodes[regionID]
}

// GetDoorNode returns the node of a hull door, or nil.
func (gm *Graph) GetDoorNode(regionID, hullDoorID int) *DoorNode {
	if gm.Region(regionID) == nil {
		return nil
	}
	nodes := gm.doorNodes[regionID]
	if hullDoorID < 0 || hullDoorID >= len(nodes) {
		return nil
	}
	return nodes[hullDoorID]
}

// GetDoorNodeByDoorID returns the node of a hull door given its door id.
func (gm *Graph) GetDoorNodeByDoorID(regionID, doorID int) *DoorNode {
	r := gm.Region(regionID)
	if r == nil {
		return nil
	}
	return gm.GetDoorNode(regionID, r.Geomorph.HullDoorID(doorID))
}

// GetAdjacentDoorNode returns the hull door identified with the given one,
// or nil if it is sealed.
func (gm *Graph) GetAdjacentDoorNode(regionID, hullDoorID int) *DoorNode {
	n := gm.GetDoorNode(regionID, hullDoorID)
	if n == nil || n.Sealed {
		return nil
	}
	for _, e := range gm.EdgesFrom(n) {
		if e.Data == GlobalEdge {
			return e.Dst.(*DoorNode)
		}
	}
	return nil
}

// IsHullDoor reports whether doorID of the region is a hull door.
func (gm *Graph) IsHullDoor(regionID, doorID int) bool {
	r := gm.Region(regionID)
	return r != nil && r.Geomorph.HullDoorID(doorID) != -1
}
