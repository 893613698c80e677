package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectContainsBoundary(t *testing.T) {
	r := R(0, 0, 10, 5)

	assert.True(t, r.Contains(V(0, 0)))
	assert.True(t, r.Contains(V(10, 5)))
	assert.True(t, r.Contains(V(5, 2)))
	assert.False(t, r.Contains(V(10.01, 2)))
	assert.False(t, r.Contains(V(5, -1)))
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", R(0, 0, 10, 10), R(5, 5, 10, 10), true},
		{"touching edge", R(0, 0, 10, 10), R(10, 0, 10, 10), true},
		{"disjoint", R(0, 0, 10, 10), R(11, 0, 10, 10), false},
		{"degenerate segments", R(100, 40, 0, 20), R(100, 40, 0, 20), true},
		{"degenerate apart", R(100, 40, 0, 20), R(100, 70, 0, 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}

func TestRectFromPointsAndUnion(t *testing.T) {
	r := RectFromPoints(V(3, 4), V(-1, 2), V(5, -6))
	assert.Equal(t, R(-1, -6, 6, 10), r)

	u := R(0, 0, 1, 1).Union(R(4, 5, 1, 1))
	assert.Equal(t, R(0, 0, 5, 6), u)
	assert.Equal(t, Rect{}, RectFromPoints())
}

func TestTransformApplyAndInverse(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
	}{
		{"identity", Identity},
		{"translate", Translate(600, -1200)},
		{"rotate 90", Transform{0, 1, -1, 0, 1200, 0}},
		{"flip x", Transform{-1, 0, 0, 1, 600, 0}},
		{"transpose", Transform{0, 1, 1, 0, 0, 0}},
	}

	p := V(17, 42)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.tr.Inverse()
			require.True(t, ok)
			back := inv.Apply(tt.tr.Apply(p))
			assert.True(t, back.Near(p, 1e-9), "got %v", back)
			assert.True(t, tt.tr.Orthogonal())
		})
	}
}

func TestTransformRotateRect(t *testing.T) {
	// 90° clockwise about the origin, then shifted right by 600.
	tr := Transform{0, 1, -1, 0, 600, 0}
	r := tr.ApplyRect(R(0, 0, 600, 300))
	assert.Equal(t, R(300, 0, 300, 600), r)
}

func TestTransformSingular(t *testing.T) {
	_, ok := Transform{1, 1, 1, 1, 0, 0}.Inverse()
	assert.False(t, ok)
	assert.False(t, Transform{2, 0, 0, 2, 0, 0}.Orthogonal())
}

func TestTransformString(t *testing.T) {
	assert.Equal(t, "[1,0,0,1,0,0]", Identity.String())
	assert.Equal(t, "[0,1,-1,0,1200,0.5]", Transform{0, 1, -1, 0, 1200, 0.5}.String())
	assert.Equal(t, "[1,0,0,1,0,0]", Transform{1, math.Copysign(0, -1), 0, 1, 0, 0}.String())
}

func TestDirectionTransform(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		in   Direction
		want Direction
	}{
		{"identity", Identity, North, North},
		{"rotate 90 north", Transform{0, 1, -1, 0, 0, 0}, North, East},
		{"rotate 90 west", Transform{0, 1, -1, 0, 0, 0}, West, North},
		{"rotate 180", Transform{-1, 0, 0, -1, 0, 0}, East, West},
		{"rotate 270", Transform{0, -1, 1, 0, 0, 0}, North, West},
		{"flip x keeps north", Transform{-1, 0, 0, 1, 0, 0}, North, North},
		{"flip x swaps east", Transform{-1, 0, 0, 1, 0, 0}, East, West},
		{"flip y", Transform{1, 0, 0, -1, 0, 0}, South, North},
		{"transpose", Transform{0, 1, 1, 0, 0, 0}, East, South},
		{"anti-transpose", Transform{0, -1, -1, 0, 0, 0}, East, North},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Transform(tt.tr)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectionTransformNonOrthogonal(t *testing.T) {
	_, ok := North.Transform(Transform{0.7, 0.7, -0.7, 0.7, 0, 0})
	assert.False(t, ok)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("W")
	require.NoError(t, err)
	assert.Equal(t, West, d)
	assert.Equal(t, East, d.Opposite())

	_, err = ParseDirection("up")
	assert.Error(t, err)
}
