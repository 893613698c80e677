package graph

import "container/heap"

// Search runs A* from src to dst and returns the node sequence src…dst,
// or nil if dst is unreachable.
//
// beforeSearch, if non-nil, runs once before the search starts. It may
// rewrite any payload's Cost and the Centroid of src/dst.
//
// g accumulates the Cost of every entered node (src itself is free) and h
// is the straight-line distance to dst's centroid. h ignores costs, so the
// result is not guaranteed optimal when costs are large; closed doors only
// need to be avoided, not priced exactly. Nodes with equal f are expanded
// in discovery order, which keeps results deterministic.
func Search[N Node, E any](g *Graph[N, E], src, dst N, beforeSearch func(*Graph[N, E])) []N {
	if beforeSearch != nil {
		beforeSearch(g)
	}

	si := g.mustIndex(src.ID())
	di := g.mustIndex(dst.ID())
	if si == di {
		return []N{src}
	}

	goal := dst.AStar().Centroid
	state := make([]searchState, len(g.nodes))

	open := &openHeap{}
	var seq uint64

	state[si] = searchState{visited: true, parent: -1}
	heap.Push(open, openEntry{node: si, g: 0, f: g.nodes[si].AStar().Centroid.Distance(goal), seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(open).(openEntry)
		cs := &state[cur.node]
		if cs.closed || cur.g > cs.g {
			continue // stale entry
		}
		if cur.node == di {
			return reconstruct(g, state, di)
		}
		cs.closed = true

		for _, nb := range g.nodes[cur.node].AStar().Neighbours {
			ns := &state[nb]
			if ns.closed {
				continue
			}
			p := g.nodes[nb].AStar()
			gScore := cs.g + p.Cost
			if ns.visited && gScore >= ns.g {
				continue
			}
			ns.visited = true
			ns.parent = cur.node
			ns.g = gScore
			seq++
			heap.Push(open, openEntry{node: nb, g: gScore, f: gScore + p.Centroid.Distance(goal), seq: seq})
		}
	}

	return nil
}

func reconstruct[N Node, E any](g *Graph[N, E], state []searchState, di int) []N {
	path := make([]N, 0, 8)
	for i := di; i != -1; i = state[i].parent {
		path = append(path, g.nodes[i])
	}
	// Reverse (built backward from dst)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type searchState struct {
	g       float64
	parent  int
	visited bool
	closed  bool
}

type openEntry struct {
	node int
	g    float64
	f    float64
	seq  uint64 // discovery order, FIFO tie-break on equal f
}

// openHeap implements container/heap for the A* open list (min-heap by f, then seq).
type openHeap []openEntry

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)   { *h = append(*h, x.(openEntry)) }
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
