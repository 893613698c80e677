// Package graph is a small directed-graph kernel shared by the region and
// room graphs. Every node embeds an A* payload so the same container can be
// searched with Search.
package graph

import (
	"fmt"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
)

// Payload is the per-node A* state that survives between searches.
// Cost is the price of entering the node; callers rewrite it before a
// search to reflect live obstacles.
type Payload struct {
	Centroid   geom.Vec
	Cost       float64
	Neighbours []int // indices into Graph.Nodes(), filled by ComputeNeighbours
}

// Node is anything with a stable id and an A* payload.
type Node interface {
	ID() string
	AStar() *Payload
}

// Edge is a directed edge carrying data of type E.
type Edge[N Node, E any] struct {
	Src  N
	Dst  N
	Data E
}

// Graph is a directed graph. It is not safe for concurrent mutation;
// builders populate it once and then only read it.
type Graph[N Node, E any] struct {
	nodes []N
	index map[string]int // node id → position in nodes
	succ  map[string][]*Edge[N, E]
	pred  map[string][]*Edge[N, E]
	edges []*Edge[N, E]
}

// New creates an empty graph.
func New[N Node, E any]() *Graph[N, E] {
	return &Graph[N, E]{
		index: make(map[string]int),
		succ:  make(map[string][]*Edge[N, E]),
		pred:  make(map[string][]*Edge[N, E]),
	}
}

// RegisterNodes adds nodes in order. Registering an id twice panics.
func (g *Graph[N, E]) RegisterNodes(nodes ...N) {
	for _, n := range nodes {
		id := n.ID()
		if _, exists := g.index[id]; exists {
			panic(fmt.Sprintf("graph: node %q registered twice", id))
		}
		g.index[id] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
}

// Connect adds the edge src→dst. If the edge already exists it is returned
// unchanged together with created=false.
func (g *Graph[N, E]) Connect(src, dst N, data E) (edge *Edge[N, E], created bool) {
	g.mustIndex(src.ID())
	g.mustIndex(dst.ID())

	if e, ok := g.GetEdge(src, dst); ok {
		return e, false
	}
	e := &Edge[N, E]{Src: src, Dst: dst, Data: data}
	g.succ[src.ID()] = append(g.succ[src.ID()], e)
	g.pred[dst.ID()] = append(g.pred[dst.ID()], e)
	g.edges = append(g.edges, e)
	return e, true
}

// GetEdge returns the edge src→dst if present.
func (g *Graph[N, E]) GetEdge(src, dst N) (*Edge[N, E], bool) {
	dstID := dst.ID()
	for _, e := range g.succ[src.ID()] {
		if e.Dst.ID() == dstID {
			return e, true
		}
	}
	return nil, false
}

// GetNodeByID returns the node with the given id.
// Asking for an id that was never registered is a programming error and panics.
func (g *Graph[N, E]) GetNodeByID(id string) N {
	return g.nodes[g.mustIndex(id)]
}

// LookupNode returns the node with the given id, if registered.
func (g *Graph[N, E]) LookupNode(id string) (N, bool) {
	i, ok := g.index[id]
	if !ok {
		var zero N
		return zero, false
	}
	return g.nodes[i], true
}

// IndexOf returns the position of n in Nodes(), or -1.
func (g *Graph[N, E]) IndexOf(n N) int {
	if i, ok := g.index[n.ID()]; ok {
		return i
	}
	return -1
}

// Node returns the i-th registered node.
func (g *Graph[N, E]) Node(i int) N {
	return g.nodes[i]
}

// Len returns the number of nodes.
func (g *Graph[N, E]) Len() int {
	return len(g.nodes)
}

// Nodes returns the nodes in registration order.
// IMPORTANT: the returned slice is shared, do not modify.
func (g *Graph[N, E]) Nodes() []N {
	return g.nodes
}

// Edges returns all edges in insertion order.
// IMPORTANT: the returned slice is shared, do not modify.
func (g *Graph[N, E]) Edges() []*Edge[N, E] {
	return g.edges
}

// EdgesFrom returns the outgoing edges of n in insertion order.
func (g *Graph[N, E]) EdgesFrom(n N) []*Edge[N, E] {
	return g.succ[n.ID()]
}

// EdgesTo returns the incoming edges of n in insertion order.
func (g *Graph[N, E]) EdgesTo(n N) []*Edge[N, E] {
	return g.pred[n.ID()]
}

// GetSuccessors returns every node reachable from n by one outgoing edge.
func (g *Graph[N, E]) GetSuccessors(n N) []N {
	out := g.EdgesFrom(n)
	succs := make([]N, 0, len(out))
	for _, e := range out {
		succs = append(succs, e.Dst)
	}
	return succs
}

// GetPredecessors returns every node with an edge into n.
func (g *Graph[N, E]) GetPredecessors(n N) []N {
	in := g.EdgesTo(n)
	preds := make([]N, 0, len(in))
	for _, e := range in {
		preds = append(preds, e.Src)
	}
	return preds
}

// ComputeNeighbours rewrites every node's Payload.Neighbours from the
// current edge set. Call it after the last Connect.
func (g *Graph[N, E]) ComputeNeighbours() {
	for _, n := range g.nodes {
		out := g.succ[n.ID()]
		nbs := make([]int, 0, len(out))
		for _, e := range out {
			nbs = append(nbs, g.index[e.Dst.ID()])
		}
		n.AStar().Neighbours = nbs
	}
}

// Reset drops every node and edge.
func (g *Graph[N, E]) Reset() {
	g.nodes = nil
	g.edges = nil
	clear(g.index)
	clear(g.succ)
	clear(g.pred)
}

func (g *Graph[N, E]) mustIndex(id string) int {
	i, ok := g.index[id]
	if !ok {
		panic(fmt.Sprintf("graph: node %q not registered", id))
	}
	return i
}
