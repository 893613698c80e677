package integration

import (
	"github.com/rob-myers/npc-cli-sub000/internal/doorstate"
	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/gmgraph"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
	"github.com/rob-myers/npc-cli-sub000/internal/world"
)

// NavigationSuite loads maps from disk, queries them and persists state.
type NavigationSuite struct {
	IntegrationSuite
}

func (s *NavigationSuite) loadCorridor() *world.World {
	dir := writeMapDir(s.T(), map[string]string{"corridor.yaml": corridorMap})
	maps, err := layout.LoadMapDir(s.ctx, dir, layout.PrepareOptions{})
	s.Require().NoError(err)
	s.Require().Len(maps, 1)

	w := world.New(gmgraph.Options{}, doorstate.New())
	s.Require().NoError(w.Load(maps[0].Name, maps[0].Regions))
	return w
}

// TestPathAcrossFlippedPlacement: the flipped copy turns the east door west.
func (s *NavigationSuite) TestPathAcrossFlippedPlacement() {
	w := s.loadCorridor()
	w.Doors().OpenAll(w.Regions())

	path, err := w.FindPath(geom.V(50, 50), geom.V(150, 50))
	s.Require().NoError(err)
	s.Len(path.Nodes, 4)
	s.Require().Len(path.Transitions, 1)
	s.Equal(geom.V(88, 50), path.Transitions[0].SrcEntry)
	s.Equal(geom.V(112, 50), path.Transitions[0].DstEntry)

	_, err = w.FindPath(geom.V(50, 50), geom.V(250, 50))
	s.ErrorIs(err, gmgraph.ErrNoPath, "east tile is sealed off")
}

func (s *NavigationSuite) TestRoomsAround() {
	w := s.loadCorridor()

	rooms, err := w.RoomsAround(geom.V(50, 50), false)
	s.Require().NoError(err)
	s.Equal([]gmgraph.RoomRef{{RegionID: 0, RoomID: 0}, {RegionID: 1, RoomID: 0}}, rooms)

	rooms, err = w.RoomsAround(geom.V(50, 50), true)
	s.Require().NoError(err)
	s.Equal([]gmgraph.RoomRef{{RegionID: 0, RoomID: 0}}, rooms, "door is closed")
}

func (s *NavigationSuite) TestPersistAndRestore() {
	svc := s.db.Persistence()

	w := s.loadCorridor()
	w.Doors().Set(0, 0, true)
	w.Doors().Set(1, 0, true)
	s.Require().NoError(svc.SaveWorld(s.ctx, w))

	restored := s.loadCorridor()
	n, err := svc.RestoreDoors(s.ctx, restored)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(w.Doors().All(), restored.Doors().All())

	stored, ok, err := s.db.Snapshots().Latest(s.ctx, "corridor")
	s.Require().NoError(err)
	s.Require().True(ok)
	live, err := restored.Snapshot()
	s.Require().NoError(err)
	s.Equal(live, stored)

	changed, err := svc.SnapshotChanged(s.ctx, restored)
	s.Require().NoError(err)
	s.False(changed)
}

func (s *NavigationSuite) TestDoorStatesPerMap() {
	doors := s.db.Doors()
	s.Require().NoError(doors.Set(s.ctx, "corridor", doorstate.State{RegionID: 0, DoorID: 0, Open: true}))
	s.Require().NoError(doors.Set(s.ctx, "other", doorstate.State{RegionID: 0, DoorID: 0, Open: false}))

	w := s.loadCorridor()
	n, err := s.db.Persistence().RestoreDoors(s.ctx, w)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.True(w.Doors().IsOpen(0, 0))

	s.Require().NoError(doors.DeleteByMap(s.ctx, "corridor"))
	n, err = s.db.Persistence().RestoreDoors(s.ctx, s.loadCorridor())
	s.Require().NoError(err)
	s.Zero(n)
}
