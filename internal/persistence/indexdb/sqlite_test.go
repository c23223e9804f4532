package indexdb

import (
	"bytes"
	"database/sql"
	"log"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"citylayout.ai/internal/layout/city"
	"citylayout.ai/internal/layout/citysphere"
	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/railway"
)

func TestSQLiteIndex_RecordsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "layout.sqlite")
	idx, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	idx.RecordRun(Run{ID: "run-1", Dimension: "overworld", Profile: "space", Seed: 42, MinX: -8, MinZ: -8, MaxX: 8, MaxZ: 8, StartedAt: "2024-01-01T00:00:00Z"})
	sphere := citysphere.Sphere{
		Center:  coord.ChunkCoord{X: 24, Z: 24},
		Enabled: true, South: true, West: true, East: true,
		GlassBlock: "glass", BaseBlock: "quartz_block", SideBlock: "stone_bricks",
	}
	idx.RecordSphere(SphereRowOf("run-1", sphere, 120))
	idx.RecordCity(CityRowOf("run-1", city.City{Coord: coord.ChunkCoord{X: 3, Z: 4}, IsCenter: true, Radius: 77}))
	idx.RecordRail(RailRowOf("run-1", railway.Rail{Coord: coord.ChunkCoord{X: 10, Z: 10}, Type: railway.Station}))
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Recording after close is a no-op.
	idx.RecordRun(Run{ID: "late"})

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		dim  string
		seed int64
		maxX int
	)
	if err := db.QueryRow(`SELECT dimension,seed,max_x FROM runs WHERE id='run-1'`).Scan(&dim, &seed, &maxX); err != nil {
		t.Fatalf("runs: %v", err)
	}
	if dim != "overworld" || seed != 42 || maxX != 8 {
		t.Fatalf("run mismatch: %s %d %d", dim, seed, maxX)
	}

	var (
		enabled, north, south int
		radius                float64
		base                  string
	)
	if err := db.QueryRow(`SELECT enabled,north,south,radius,base FROM spheres WHERE run_id='run-1' AND x=24 AND z=24`).Scan(&enabled, &north, &south, &radius, &base); err != nil {
		t.Fatalf("spheres: %v", err)
	}
	if enabled != 1 || north != 0 || south != 1 || radius != 120 || base != "quartz_block" {
		t.Fatalf("sphere mismatch: %d %d %d %v %q", enabled, north, south, radius, base)
	}

	var railType string
	if err := db.QueryRow(`SELECT type FROM rails WHERE x=10 AND z=10`).Scan(&railType); err != nil {
		t.Fatalf("rails: %v", err)
	}
	if railType != "STATION" {
		t.Fatalf("rail type=%q", railType)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("runs count=%d err=%v", n, err)
	}
}

func TestSQLiteIndex_CountsFailedWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.sqlite")
	idx, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec(`CREATE TRIGGER rails_reject BEFORE INSERT ON rails BEGIN SELECT RAISE(ABORT, 'rejected'); END;`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	_ = db.Close()

	var buf bytes.Buffer
	idx, err = OpenSQLite(path, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	idx.RecordCity(CityRow{RunID: "r", X: 1, Z: 1})
	idx.RecordCity(CityRow{RunID: "r", X: 2, Z: 2})
	// The rejected rail rolls back the open transaction, taking both cities with it.
	idx.RecordRail(RailRow{RunID: "r", X: 3, Z: 3, Type: "STATION"})
	idx.RecordCity(CityRow{RunID: "r", X: 4, Z: 4})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := idx.Stats().SendFailedTotal; got != 3 {
		t.Fatalf("SendFailedTotal=%d want 3", got)
	}
	if !strings.Contains(buf.String(), "rejected") {
		t.Fatalf("insert failure not logged: %q", buf.String())
	}

	db, err = sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cities`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("cities count=%d err=%v", n, err)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.RecordRun(Run{ID: "a"})

	s.RecordRun(Run{ID: "b"})
	s.RecordSphere(SphereRow{})
	s.RecordHighway(HighwayRow{})

	st := s.Stats()
	if st.DropRunTotal != 1 || st.DropRowTotal != 2 {
		t.Fatalf("drops: run=%d row=%d", st.DropRunTotal, st.DropRowTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite("", nil); err == nil {
		t.Fatalf("expected error")
	}
}
