package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
)

// twoRooms: 200×100 tile, rooms left/right joined by an interior door at
// x=100, one hull door on the east edge.
func twoRooms() *Geomorph {
	return &Geomorph{
		Key:      "g-two",
		Bounds:   geom.R(0, 0, 200, 100),
		NavRects: []geom.Rect{geom.R(0, 0, 200, 100), geom.R(10, 10, 20, 20)},
		Rooms: []Room{
			{Center: geom.V(50, 50), Rect: geom.R(0, 0, 100, 100)},
			{Center: geom.V(150, 50), Rect: geom.R(100, 0, 100, 100)},
		},
		Doors: []Door{
			{Seg: [2]geom.Vec{geom.V(100, 40), geom.V(100, 60)}, Normal: geom.V(1, 0), RoomIDs: [2]int{1, 0}},
			{Seg: [2]geom.Vec{geom.V(200, 40), geom.V(200, 60)}, Normal: geom.V(2, 0), RoomIDs: [2]int{NoRoom, 1}, Hull: true},
		},
		Windows: []Window{
			{RoomIDs: [2]int{0, 1}},
			{RoomIDs: [2]int{1, NoRoom}, Frosted: true},
		},
	}
}

func TestPrepareComputesEntries(t *testing.T) {
	g := twoRooms()
	require.NoError(t, g.Prepare(PrepareOptions{EntryOffset: 10}))

	inner := &g.Doors[0]
	require.NotNil(t, inner.Entries[0])
	require.NotNil(t, inner.Entries[1])
	assert.Equal(t, geom.V(110, 50), *inner.Entries[0])
	assert.Equal(t, geom.V(90, 50), *inner.Entries[1])

	hull := &g.Doors[1]
	assert.Nil(t, hull.Entries[0])
	require.NotNil(t, hull.Entries[1])
	assert.Equal(t, geom.V(190, 50), *hull.Entries[1], "normal is normalized before use")

	e, ok := hull.Entry(1)
	require.True(t, ok)
	assert.Equal(t, geom.V(190, 50), e)
}

func TestPrepareHullDoors(t *testing.T) {
	g := twoRooms()
	require.NoError(t, g.Prepare(PrepareOptions{}))

	assert.Equal(t, []int{1}, g.HullDoorIDs())
	assert.Same(t, &g.Doors[1], g.HullDoor(0))
	assert.Equal(t, 0, g.HullDoorID(1))
	assert.Equal(t, -1, g.HullDoorID(0))

	require.NotNil(t, g.Doors[1].Direction, "direction inferred from normal")
	assert.Equal(t, geom.East, *g.Doors[1].Direction)
}

func TestPrepareIndexes(t *testing.T) {
	g := twoRooms()
	require.NoError(t, g.Prepare(PrepareOptions{}))

	assert.Equal(t, []int{0}, g.DoorIDsOfRoom(0))
	assert.Equal(t, []int{0, 1}, g.DoorIDsOfRoom(1))
	assert.Equal(t, []int{0, 1}, g.WindowIDsOfRoom(1))
	assert.Nil(t, g.DoorIDsOfRoom(7))
	assert.Equal(t, []int{1, 0}, g.NavRectsByArea())
}

func TestPrepareMissingEntry(t *testing.T) {
	t.Run("strict", func(t *testing.T) {
		g := twoRooms()
		g.Doors[0].RoomIDs = [2]int{1, NoRoom}
		err := g.Prepare(PrepareOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingEntry)
	})

	t.Run("lenient", func(t *testing.T) {
		g := twoRooms()
		g.Doors[0].RoomIDs = [2]int{1, NoRoom}
		require.NoError(t, g.Prepare(PrepareOptions{Lenient: true}))
		assert.Nil(t, g.Doors[0].Entries[1])
	})
}

func TestPrepareInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Geomorph)
	}{
		{"no key", func(g *Geomorph) { g.Key = "" }},
		{"empty bounds", func(g *Geomorph) { g.Bounds = geom.Rect{} }},
		{"unknown room", func(g *Geomorph) { g.Doors[0].RoomIDs = [2]int{0, 5} }},
		{"self door", func(g *Geomorph) { g.Doors[0].RoomIDs = [2]int{1, 1} }},
		{"zero normal", func(g *Geomorph) { g.Doors[0].Normal = geom.Vec{} }},
		{"bad window", func(g *Geomorph) { g.Windows[0].RoomIDs = [2]int{0, 9} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := twoRooms()
			tt.mutate(g)
			assert.ErrorIs(t, g.Prepare(PrepareOptions{}), ErrInvalidLayout)
		})
	}
}

func TestNavRectContainingPrefersSmallest(t *testing.T) {
	g := twoRooms()
	require.NoError(t, g.Prepare(PrepareOptions{}))

	assert.Equal(t, 1, g.NavRectContaining(geom.V(15, 15)))
	assert.Equal(t, 0, g.NavRectContaining(geom.V(150, 50)))
	assert.Equal(t, -1, g.NavRectContaining(geom.V(250, 50)))
}

func TestRoomContaining(t *testing.T) {
	g := twoRooms()
	require.NoError(t, g.Prepare(PrepareOptions{}))

	id, ok := g.RoomContaining(geom.V(20, 20), false)
	require.True(t, ok)
	assert.Equal(t, 0, id)

	_, ok = g.RoomContaining(geom.V(201, 50), false)
	assert.False(t, ok)

	id, ok = g.RoomContaining(geom.V(201, 50), true)
	require.True(t, ok, "point on hull doorway")
	assert.Equal(t, 1, id)
}

func TestDoorOtherRoom(t *testing.T) {
	g := twoRooms()
	assert.Equal(t, 0, g.Doors[0].OtherRoomID(1))
	assert.Equal(t, 1, g.Doors[0].OtherRoomID(0))
	assert.Equal(t, NoRoom, g.Doors[0].OtherRoomID(3))
	assert.Equal(t, 1, g.Doors[1].RoomID())
}

func TestRegionTransforms(t *testing.T) {
	g := twoRooms()
	require.NoError(t, g.Prepare(PrepareOptions{}))

	r, err := NewRegion(3, g, geom.Transform{0, 1, -1, 0, 100, 0})
	require.NoError(t, err)
	assert.Equal(t, "g-two", r.Key())
	assert.Equal(t, geom.R(0, 0, 100, 200), r.WorldBounds())

	p := geom.V(30, 70)
	assert.True(t, r.ToLocal(r.ToWorld(p)).Near(p, 1e-9))

	_, err = NewRegion(0, g, geom.Transform{})
	assert.ErrorIs(t, err, ErrInvalidTransform)
}

const sampleMap = `
name: sample
geomorphs:
  - key: g-square
    bounds: {x: 0, y: 0, width: 100, height: 100}
    nav_rects:
      - {x: 0, y: 0, width: 100, height: 100}
    rooms:
      - center: {x: 50, y: 50}
        rect: {x: 0, y: 0, width: 100, height: 100}
    doors:
      - seg: [{x: 100, y: 40}, {x: 100, y: 60}]
        normal: {x: 1, y: 0}
        rooms: [-1, 0]
        hull: true
        direction: e
placements:
  - key: g-square
  - key: g-square
    transform: [-1, 0, 0, 1, 200, 0]
`

func TestParseMap(t *testing.T) {
	m, err := ParseMap([]byte(sampleMap), PrepareOptions{})
	require.NoError(t, err)

	assert.Equal(t, "sample", m.Name)
	require.Len(t, m.Regions, 2)
	assert.Equal(t, geom.Identity, m.Regions[0].Transform)
	assert.Equal(t, 1, m.Regions[1].ID)
	assert.Equal(t, geom.R(100, 0, 100, 100), m.Regions[1].WorldBounds())
	assert.Same(t, m.Regions[0].Geomorph, m.Regions[1].Geomorph)

	d := m.Regions[0].Geomorph.HullDoor(0)
	require.NotNil(t, d.Direction)
	assert.Equal(t, geom.East, *d.Direction)
}

func TestParseMapErrors(t *testing.T) {
	_, err := ParseMap([]byte("placements: [{key: nope}]"), PrepareOptions{})
	assert.ErrorIs(t, err, ErrUnknownGeomorph)

	_, err = ParseMap([]byte("geomorphs: {"), PrepareOptions{})
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestLoadMapDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(sampleMap), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("geomorphs: []\nplacements: []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	maps, err := LoadMapDir(context.Background(), dir, PrepareOptions{})
	require.NoError(t, err)
	require.Len(t, maps, 2)
	assert.Equal(t, "sample", maps[0].Name)
	assert.Equal(t, "b", maps[1].Name, "name defaults to file name")
	assert.Empty(t, maps[1].Regions)
}

func TestLoadMapDirPropagatesErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("placements: [{key: nope}]"), 0o644))

	_, err := LoadMapDir(context.Background(), dir, PrepareOptions{})
	assert.ErrorIs(t, err, ErrUnknownGeomorph)
}

func TestFingerprint(t *testing.T) {
	m1, err := ParseMap([]byte(sampleMap), PrepareOptions{})
	require.NoError(t, err)
	m2, err := ParseMap([]byte(sampleMap), PrepareOptions{})
	require.NoError(t, err)

	f1, err := Fingerprint(m1.Regions)
	require.NoError(t, err)
	f2, err := Fingerprint(m2.Regions)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
	assert.Len(t, f1, 64)

	f3, err := Fingerprint(m1.Regions[:1])
	require.NoError(t, err)
	assert.NotEqual(t, f1, f3)

	shallow, err := ParseMap([]byte(sampleMap), PrepareOptions{EntryOffset: 3})
	require.NoError(t, err)
	f4, err := Fingerprint(shallow.Regions)
	require.NoError(t, err)
	assert.NotEqual(t, f1, f4, "door entries are part of the layout")
}
