package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rob-myers/npc-cli-sub000/internal/doorstate"
)

// DoorStateRepository manages the door_states table.
type DoorStateRepository struct {
	db *pgxpool.Pool
}

// NewDoorStateRepository creates a new DoorStateRepository.
func NewDoorStateRepository(db *pgxpool.Pool) *DoorStateRepository {
	return &DoorStateRepository{db: db}
}

// LoadByMap loads every stored door state of a map, ordered by region and door.
func (r *DoorStateRepository) LoadByMap(ctx context.Context, mapName string) ([]doorstate.State, error) {
	query := `
		SELECT region_id, door_id, open
		FROM door_states
		WHERE map_name = $1
		ORDER BY region_id, door_id
	`

	rows, err := r.db.Query(ctx, query, mapName)
	if err != nil {
		return nil, fmt.Errorf("querying door states for map %q: %w", mapName, err)
	}
	defer rows.Close()

	var states []doorstate.State
	for rows.Next() {
		var s doorstate.State
		if err := rows.Scan(&s.RegionID, &s.DoorID, &s.Open); err != nil {
			return nil, fmt.Errorf("scanning door state row: %w", err)
		}
		states = append(states, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating door state rows: %w", err)
	}

	return states, nil
}

// Set upserts the state of one door.
func (r *DoorStateRepository) Set(ctx context.Context, mapName string, s doorstate.State) error {
	query := `
		INSERT INTO door_states (map_name, region_id, door_id, open, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (map_name, region_id, door_id)
		DO UPDATE SET open = $4, updated_at = now()
	`

	if _, err := r.db.Exec(ctx, query, mapName, s.RegionID, s.DoorID, s.Open); err != nil {
		return fmt.Errorf("saving door %d/%d of map %q: %w", s.RegionID, s.DoorID, mapName, err)
	}
	return nil
}

// SaveAll replaces every door state of a map.
func (r *DoorStateRepository) SaveAll(ctx context.Context, mapName string, states []doorstate.State) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "map", mapName, "error", err)
		}
	}()

	if err := r.SaveAllTx(ctx, tx, mapName, states); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveAllTx replaces every door state of a map within an existing transaction.
func (r *DoorStateRepository) SaveAllTx(ctx context.Context, tx pgx.Tx, mapName string, states []doorstate.State) error {
	if _, err := tx.Exec(ctx, `DELETE FROM door_states WHERE map_name = $1`, mapName); err != nil {
		return fmt.Errorf("deleting door states of map %q: %w", mapName, err)
	}

	if len(states) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(states))
	for _, s := range states {
		rows = append(rows, []any{mapName, s.RegionID, s.DoorID, s.Open})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"door_states"},
		[]string{"map_name", "region_id", "door_id", "open"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting door states of map %q: %w", mapName, err)
	}
	return nil
}

// DeleteByMap removes every door state of a map.
func (r *DoorStateRepository) DeleteByMap(ctx context.Context, mapName string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM door_states WHERE map_name = $1`, mapName); err != nil {
		return fmt.Errorf("deleting door states of map %q: %w", mapName, err)
	}
	return nil
}
