package gmgraph

import (
	"fmt"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/graph"
)

// Node is either a *RegionNode or a *DoorNode.
type Node interface {
	graph.Node
	RegionID() int
	gmNode()
}

// EdgeKind tells local edges (region ↔ own hull door) from global edges
// (hull door ↔ identified hull door of another region).
type EdgeKind uint8

const (
	LocalEdge EdgeKind = iota
	GlobalEdge
)

func (k EdgeKind) String() string {
	if k == GlobalEdge {
		return "global"
	}
	return "local"
}

// Edge is a directed region-graph edge.
type Edge = graph.Edge[Node, EdgeKind]

// RegionNode is one navmesh component of a placed geomorph.
type RegionNode struct {
	id        string
	regionID  int
	RegionKey string
	Transform geom.Transform
	NavRectID int
	Rect      geom.Rect // world space

	astar graph.Payload
}

func (n *RegionNode) ID() string            { return n.id }
func (n *RegionNode) AStar() *graph.Payload { return &n.astar }
func (n *RegionNode) RegionID() int         { return n.regionID }
func (n *RegionNode) gmNode()               {}

// DoorNode is one hull door of a placed geomorph.
type DoorNode struct {
	id         string
	regionID   int
	RegionKey  string
	Transform  geom.Transform
	HullDoorID int
	DoorID     int // index into the geomorph's doors
	NavRectID  int // component the door opens into, -1 if none

	// Direction is the world compass direction, nil when the declared
	// direction cannot be resolved through Transform.
	Direction *geom.Direction

	// Sealed stays true until the door is identified with a hull door of
	// another region.
	Sealed bool

	Rect  geom.Rect // world space
	Entry geom.Vec  // world point just inside the doorway

	astar graph.Payload
}

func (n *DoorNode) ID() string            { return n.id }
func (n *DoorNode) AStar() *graph.Payload { return &n.astar }
func (n *DoorNode) RegionID() int         { return n.regionID }
func (n *DoorNode) gmNode()               {}

// RegionNodeID is the deterministic id of a region node.
func RegionNodeID(key string, t geom.Transform, navRectID int) string {
	return fmt.Sprintf("gm-%s-%s-%d", key, t, navRectID)
}

// DoorNodeID is the deterministic id of a hull door node.
func DoorNodeID(key string, t geom.Transform, hullDoorID int) string {
	return fmt.Sprintf("door-%s-%s-%d", key, t, hullDoorID)
}
