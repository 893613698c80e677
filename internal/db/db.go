package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB owns the connection pool shared by the repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and checks the connection.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Open migrates the schema and then connects.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if err := RunMigrations(ctx, dsn); err != nil {
		return nil, err
	}
	return New(ctx, dsn)
}

func (d *DB) Close()                         { d.pool.Close() }
func (d *DB) Pool() *pgxpool.Pool            { return d.pool }
func (d *DB) Doors() *DoorStateRepository    { return NewDoorStateRepository(d.pool) }
func (d *DB) Snapshots() *SnapshotRepository { return NewSnapshotRepository(d.pool) }

// Persistence returns a persistence service over this pool.
func (d *DB) Persistence() *WorldPersistenceService {
	return NewWorldPersistenceService(d.pool, d.Doors(), d.Snapshots())
}
