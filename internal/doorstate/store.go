// Package doorstate keeps the open/closed state of doors. The navigation
// graphs never store door state; they query a Store while searching.
package doorstate

import (
	"cmp"
	"slices"
	"sync"

	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// State is the state of one door of a placed region.
type State struct {
	RegionID int  `yaml:"region"`
	DoorID   int  `yaml:"door"`
	Open     bool `yaml:"open"`
}

type key struct {
	regionID, doorID int
}

// Store is a concurrency-safe door state table. Doors never set are closed.
type Store struct {
	mu   sync.RWMutex
	open map[key]bool
}

// New creates an empty store (every door closed).
func New() *Store {
	return &Store{open: make(map[key]bool)}
}

// IsOpen reports whether the door is open.
func (s *Store) IsOpen(regionID, doorID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open[key{regionID, doorID}]
}

// Set opens or closes a door.
func (s *Store) Set(regionID, doorID int, open bool) {
	s.mu.Lock()
	s.open[key{regionID, doorID}] = open
	s.mu.Unlock()
}

// Toggle flips a door and returns its new state.
func (s *Store) Toggle(regionID, doorID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{regionID, doorID}
	s.open[k] = !s.open[k]
	return s.open[k]
}

// OpenAll opens every door of the given regions.
func (s *Store) OpenAll(regions []*layout.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range regions {
		for doorID := range r.Geomorph.Doors {
			s.open[key{r.ID, doorID}] = true
		}
	}
}

// All returns every recorded door state ordered by region then door.
func (s *Store) All() []State {
	s.mu.RLock()
	out := make([]State, 0, len(s.open))
	for k, open := range s.open {
		out = append(out, State{RegionID: k.regionID, DoorID: k.doorID, Open: open})
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b State) int {
		return cmp.Or(cmp.Compare(a.RegionID, b.RegionID), cmp.Compare(a.DoorID, b.DoorID))
	})
	return out
}

// Load replaces the whole table.
func (s *Store) Load(states []State) {
	open := make(map[key]bool, len(states))
	for _, st := range states {
		open[key{st.RegionID, st.DoorID}] = st.Open
	}
	s.mu.Lock()
	s.open = open
	s.mu.Unlock()
}

// Len returns the number of recorded doors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.open)
}
