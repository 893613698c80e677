package gmgraph

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// NodeRecord is the serialisable part of a node.
type NodeRecord struct {
	ID        string `msgpack:"id"`
	Kind      string `msgpack:"kind"` // "gm" or "door"
	RegionID  int    `msgpack:"region"`
	Index     int    `msgpack:"index"` // nav rect id or hull door id
	Sealed    bool   `msgpack:"sealed"`
	Direction int8   `msgpack:"dir"` // -1 when unresolved
}

// EdgeRecord is the serialisable part of an edge.
type EdgeRecord struct {
	Src  string   `msgpack:"src"`
	Dst  string   `msgpack:"dst"`
	Kind EdgeKind `msgpack:"kind"`
}

// Snapshot is the node/edge set of a region graph, keyed by the layout
// fingerprint it was built from.
type Snapshot struct {
	Fingerprint string       `msgpack:"fp"`
	Nodes       []NodeRecord `msgpack:"nodes"`
	Edges       []EdgeRecord `msgpack:"edges"`
}

// Snapshot captures the graph's nodes and edges in registration order.
func (gm *Graph) Snapshot() (Snapshot, error) {
	fp, err := layout.Fingerprint(gm.regions)
	if err != nil {
		return Snapshot{}, err
	}

	s := Snapshot{
		Fingerprint: fp,
		Nodes:       make([]NodeRecord, 0, gm.Len()),
		Edges:       make([]EdgeRecord, 0, len(gm.Edges())),
	}
	for _, n := range gm.Nodes() {
		switch n := n.(type) {
		case *RegionNode:
			s.Nodes = append(s.Nodes, NodeRecord{ID: n.id, Kind: "gm", RegionID: n.regionID, Index: n.NavRectID, Direction: -1})
		case *DoorNode:
			dir := int8(-1)
			if n.Direction != nil {
				dir = int8(*n.Direction)
			}
			s.Nodes = append(s.Nodes, NodeRecord{ID: n.id, Kind: "door", RegionID: n.regionID, Index: n.HullDoorID, Sealed: n.Sealed, Direction: dir})
		}
	}
	for _, e := range gm.Edges() {
		s.Edges = append(s.Edges, EdgeRecord{Src: e.Src.ID(), Dst: e.Dst.ID(), Kind: e.Data})
	}
	return s, nil
}

// Marshal encodes the snapshot with msgpack.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encoding region graph snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a msgpack snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding region graph snapshot: %w", err)
	}
	return s, nil
}
