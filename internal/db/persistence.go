package db

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rob-myers/npc-cli-sub000/internal/world"
)

// WorldPersistenceService saves and restores the persistent part of a world:
// its door states and a snapshot of its region graph.
type WorldPersistenceService struct {
	pool      *pgxpool.Pool
	doors     *DoorStateRepository
	snapshots *SnapshotRepository
}

// NewWorldPersistenceService создаёт новый сервис.
func NewWorldPersistenceService(
	pool *pgxpool.Pool,
	doors *DoorStateRepository,
	snapshots *SnapshotRepository,
) *WorldPersistenceService {
	return &WorldPersistenceService{
		pool:      pool,
		doors:     doors,
		snapshots: snapshots,
	}
}

// SaveWorld saves door states and the graph snapshot in a single transaction.
func (s *WorldPersistenceService) SaveWorld(ctx context.Context, w *world.World) error {
	mapName := w.Name()
	snap, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot of map %q: %w", mapName, err)
	}
	states := w.Doors().All()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for map %q: %w", mapName, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "map", mapName, "error", err)
		}
	}()

	// 1. Door states
	if err := s.doors.SaveAllTx(ctx, tx, mapName, states); err != nil {
		return err
	}

	// 2. Snapshot
	if err := s.snapshots.SaveTx(ctx, tx, mapName, snap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for map %q: %w", mapName, err)
	}

	slog.Info("world saved",
		"map", mapName,
		"doors", len(states),
		"fingerprint", snap.Fingerprint)

	return nil
}

// RestoreDoors loads the stored door states of the world's map into its
// door store. The store is left untouched when nothing is stored.
func (s *WorldPersistenceService) RestoreDoors(ctx context.Context, w *world.World) (int, error) {
	mapName := w.Name()
	states, err := s.doors.LoadByMap(ctx, mapName)
	if err != nil {
		return 0, fmt.Errorf("loading door states of map %q: %w", mapName, err)
	}
	if len(states) == 0 {
		return 0, nil
	}
	w.Doors().Load(states)
	return len(states), nil
}

// SnapshotChanged reports whether the stored snapshot for the world's
// layout differs from the live graph (or is missing).
func (s *WorldPersistenceService) SnapshotChanged(ctx context.Context, w *world.World) (bool, error) {
	live, err := w.Snapshot()
	if err != nil {
		return false, err
	}
	stored, ok, err := s.snapshots.Load(ctx, live.Fingerprint)
	if err != nil || !ok {
		return true, err
	}
	return !slices.Equal(stored.Nodes, live.Nodes) || !slices.Equal(stored.Edges, live.Edges), nil
}
