package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
)

// schemaCounter provides unique schema names for parallel suites.
var schemaCounter atomic.Uint32

// acquireSchema creates an isolated PostgreSQL schema and returns DSN with search_path.
// Schema is automatically dropped via t.Cleanup.
func acquireSchema(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	schemaName := fmt.Sprintf("test_%d", schemaCounter.Add(1))

	conn, err := pgx.Connect(ctx, sharedPGBaseDSN)
	if err != nil {
		t.Fatalf("connect to shared postgres: %v", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE SCHEMA "+schemaName); err != nil {
		t.Fatalf("create schema %s: %v", schemaName, err)
	}

	t.Cleanup(func() {
		cleanCtx := context.Background()
		cleanConn, err := pgx.Connect(cleanCtx, sharedPGBaseDSN)
		if err != nil {
			t.Logf("cleanup: connect failed: %v", err)
			return
		}
		defer cleanConn.Close(cleanCtx)
		if _, err := cleanConn.Exec(cleanCtx, "DROP SCHEMA "+schemaName+" CASCADE"); err != nil {
			t.Logf("cleanup: drop schema %s: %v", schemaName, err)
		}
	})

	sep := "&"
	if !strings.Contains(sharedPGBaseDSN, "?") {
		sep = "?"
	}
	return sharedPGBaseDSN + sep + "search_path=" + schemaName
}

// corridorMap: three 100×100 rooms in a row. The middle tile is the
// flipped copy of the west one; the east tile has no door, so its hull
// stays sealed.
const corridorMap = `
name: corridor
geomorphs:
  - key: g-101
    bounds: {x: 0, y: 0, width: 100, height: 100}
    nav_rects:
      - {x: 0, y: 0, width: 100, height: 100}
    rooms:
      - name: office
        center: {x: 50, y: 50}
        rect: {x: 0, y: 0, width: 100, height: 100}
    doors:
      - seg: [{x: 100, y: 40}, {x: 100, y: 60}]
        normal: {x: 1, y: 0}
        rooms: [-1, 0]
        hull: true
        direction: e
  - key: g-102
    bounds: {x: 0, y: 0, width: 100, height: 100}
    nav_rects:
      - {x: 0, y: 0, width: 100, height: 100}
    rooms:
      - center: {x: 50, y: 50}
        rect: {x: 0, y: 0, width: 100, height: 100}
placements:
  - key: g-101
  - key: g-101
    transform: [-1, 0, 0, 1, 200, 0]
  - key: g-102
    transform: [1, 0, 0, 1, 200, 0]
`

// writeMapDir writes the given maps into a fresh directory.
func writeMapDir(t testing.TB, maps map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range maps {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("writing map %s: %v", name, err)
		}
	}
	return dir
}
