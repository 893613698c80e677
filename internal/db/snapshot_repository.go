package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rob-myers/npc-cli-sub000/internal/gmgraph"
)

// SnapshotRepository manages the graph_snapshots table. Snapshots are keyed
// by layout fingerprint, so saving the same layout twice is a no-op update.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save stores a snapshot of the given map.
func (r *SnapshotRepository) Save(ctx context.Context, mapName string, s gmgraph.Snapshot) error {
	return r.SaveTx(ctx, r.db, mapName, s)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SaveTx stores a snapshot through q (pool or transaction).
func (r *SnapshotRepository) SaveTx(ctx context.Context, q execer, mapName string, s gmgraph.Snapshot) error {
	payload, err := s.Marshal()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO graph_snapshots (fingerprint, map_name, node_count, edge_count, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fingerprint)
		DO UPDATE SET
			map_name = EXCLUDED.map_name,
			node_count = EXCLUDED.node_count,
			edge_count = EXCLUDED.edge_count,
			payload = EXCLUDED.payload,
			created_at = now()
	`

	if _, err := q.Exec(ctx, query, s.Fingerprint, mapName, len(s.Nodes), len(s.Edges), payload); err != nil {
		return fmt.Errorf("saving snapshot %s of map %q: %w", s.Fingerprint, mapName, err)
	}
	return nil
}

// Load returns the snapshot with the given fingerprint.
// Returns false if there is none.
func (r *SnapshotRepository) Load(ctx context.Context, fingerprint string) (gmgraph.Snapshot, bool, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM graph_snapshots WHERE fingerprint = $1`, fingerprint,
	).Scan(&payload)
	return decodeSnapshot(payload, err, fingerprint)
}

// Latest returns the most recently saved snapshot of a map.
func (r *SnapshotRepository) Latest(ctx context.Context, mapName string) (gmgraph.Snapshot, bool, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM graph_snapshots WHERE map_name = $1 ORDER BY created_at DESC LIMIT 1`, mapName,
	).Scan(&payload)
	return decodeSnapshot(payload, err, mapName)
}

func decodeSnapshot(payload []byte, err error, key string) (gmgraph.Snapshot, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return gmgraph.Snapshot{}, false, nil
	}
	if err != nil {
		return gmgraph.Snapshot{}, false, fmt.Errorf("querying snapshot %s: %w", key, err)
	}
	s, err := gmgraph.UnmarshalSnapshot(payload)
	if err != nil {
		return gmgraph.Snapshot{}, false, fmt.Errorf("snapshot %s: %w", key, err)
	}
	return s, true, nil
}
