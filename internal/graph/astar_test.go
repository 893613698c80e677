package graph

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLine соединяет узлы в обе стороны по порядку.
func buildLine(g *Graph[*testNode, struct{}], nodes ...*testNode) {
	for i := 1; i < len(nodes); i++ {
		g.Connect(nodes[i-1], nodes[i], struct{}{})
		g.Connect(nodes[i], nodes[i-1], struct{}{})
	}
}

func ids(path []*testNode) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.id
	}
	return out
}

func TestSearchSameNode(t *testing.T) {
	g := New[*testNode, struct{}]()
	a := newTestNode("a", 0, 0)
	g.RegisterNodes(a)
	g.ComputeNeighbours()

	assert.Equal(t, []string{"a"}, ids(Search(g, a, a, nil)))
}

func TestSearchLine(t *testing.T) {
	g := New[*testNode, struct{}]()
	a, b, c, d := newTestNode("a", 0, 0), newTestNode("b", 10, 0), newTestNode("c", 20, 0), newTestNode("d", 30, 0)
	g.RegisterNodes(a, b, c, d)
	buildLine(g, a, b, c, d)
	g.ComputeNeighbours()

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Search(g, a, d, nil)))
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(Search(g, d, a, nil)))
}

func TestSearchUnreachable(t *testing.T) {
	g := New[*testNode, struct{}]()
	a, b, c := newTestNode("a", 0, 0), newTestNode("b", 10, 0), newTestNode("c", 20, 0)
	g.RegisterNodes(a, b, c)
	buildLine(g, a, b)
	g.ComputeNeighbours()

	assert.Nil(t, Search(g, a, c, nil))
}

func TestSearchDirected(t *testing.T) {
	g := New[*testNode, struct{}]()
	a, b := newTestNode("a", 0, 0), newTestNode("b", 10, 0)
	g.RegisterNodes(a, b)
	g.Connect(a, b, struct{}{})
	g.ComputeNeighbours()

	assert.NotNil(t, Search(g, a, b, nil))
	assert.Nil(t, Search(g, b, a, nil))
}

// diamond: a → (top | bottom) → z, both branches geometrically equal.
func buildDiamond() (*Graph[*testNode, struct{}], *testNode, *testNode, *testNode, *testNode) {
	g := New[*testNode, struct{}]()
	a := newTestNode("a", 0, 0)
	top := newTestNode("top", 10, -10)
	bottom := newTestNode("bottom", 10, 10)
	z := newTestNode("z", 20, 0)
	g.RegisterNodes(a, top, bottom, z)
	buildLine(g, a, top, z)
	buildLine(g, a, bottom, z)
	g.ComputeNeighbours()
	return g, a, top, bottom, z
}

func TestSearchTieBreakIsDeterministic(t *testing.T) {
	g, a, _, _, z := buildDiamond()

	first := ids(Search(g, a, z, nil))
	assert.Equal(t, []string{"a", "top", "z"}, first, "first discovered branch wins ties")
	for range 10 {
		assert.Equal(t, first, ids(Search(g, a, z, nil)))
	}
}

func TestSearchAvoidsExpensiveNode(t *testing.T) {
	g, a, top, bottom, z := buildDiamond()

	path := Search(g, a, z, func(*Graph[*testNode, struct{}]) {
		top.astar.Cost = 10000
		bottom.astar.Cost = 1
	})
	assert.Equal(t, []string{"a", "bottom", "z"}, ids(path))
}

func TestSearchExpensiveOnlyRouteStillFound(t *testing.T) {
	g := New[*testNode, struct{}]()
	a, door, b := newTestNode("a", 0, 0), newTestNode("door", 10, 0), newTestNode("b", 20, 0)
	g.RegisterNodes(a, door, b)
	buildLine(g, a, door, b)
	g.ComputeNeighbours()

	door.astar.Cost = 10000
	assert.Equal(t, []string{"a", "door", "b"}, ids(Search(g, a, b, nil)))
}

func TestSearchBeforeSearchRunsOnce(t *testing.T) {
	g, a, _, _, z := buildDiamond()

	calls := 0
	path := Search(g, a, z, func(gr *Graph[*testNode, struct{}]) {
		calls++
		require.Same(t, g, gr)
	})
	assert.Equal(t, 1, calls)
	assert.Len(t, path, 3)
}

func TestOpenHeapOrder(t *testing.T) {
	h := &openHeap{}
	heap.Push(h, openEntry{node: 1, f: 10, seq: 0})
	heap.Push(h, openEntry{node: 2, f: 5, seq: 1})
	heap.Push(h, openEntry{node: 3, f: 5, seq: 2})
	heap.Push(h, openEntry{node: 4, f: 1, seq: 3})

	order := make([]int, 0, 4)
	for h.Len() > 0 {
		order = append(order, heap.Pop(h).(openEntry).node)
	}
	assert.Equal(t, []int{4, 2, 3, 1}, order)
}
