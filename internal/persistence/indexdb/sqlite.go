package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db     *sql.DB
	logger *log.Logger

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun    atomic.Uint64
	dropRow    atomic.Uint64
	sendFailed atomic.Uint64
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqSphere
	reqCity
	reqHighway
	reqRail
)

type req struct {
	kind reqKind

	run     Run
	sphere  SphereRow
	city    CityRow
	highway HighwayRow
	rail    RailRow
}

// OpenSQLite opens or creates the index at path. Write failures are counted in
// Stats().SendFailedTotal and reported through logger when it is non-nil.
func OpenSQLite(path string, logger *log.Logger) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:     db,
		logger: logger,
		// A dump of a large rectangle produces rows much faster than sqlite commits them.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			dimension TEXT NOT NULL,
			profile TEXT NOT NULL,
			seed INTEGER NOT NULL,
			min_x INTEGER NOT NULL,
			min_z INTEGER NOT NULL,
			max_x INTEGER NOT NULL,
			max_z INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS spheres (
			run_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			enabled INTEGER NOT NULL,
			north INTEGER NOT NULL,
			south INTEGER NOT NULL,
			west INTEGER NOT NULL,
			east INTEGER NOT NULL,
			radius REAL NOT NULL,
			glass TEXT,
			base TEXT,
			side TEXT,
			PRIMARY KEY (run_id, x, z)
		);`,
		`CREATE TABLE IF NOT EXISTS cities (
			run_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			is_center INTEGER NOT NULL,
			radius REAL NOT NULL,
			PRIMARY KEY (run_id, x, z)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cities_center ON cities(run_id, is_center);`,
		`CREATE TABLE IF NOT EXISTS highways (
			run_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			x_level INTEGER NOT NULL,
			z_level INTEGER NOT NULL,
			PRIMARY KEY (run_id, x, z)
		);`,
		`CREATE TABLE IF NOT EXISTS rails (
			run_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			type TEXT NOT NULL,
			PRIMARY KEY (run_id, x, z)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropRunTotal:  s.dropRun.Load(),
		DropRowTotal:  s.dropRow.Load(),

		SendFailedTotal: s.sendFailed.Load(),
	}
}

func (s *SQLiteIndex) enqueue(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Drop if the indexer falls behind; the layout can always be recomputed.
		if r.kind == reqRun {
			s.dropRun.Add(1)
		} else {
			s.dropRow.Add(1)
		}
	}
}

func (s *SQLiteIndex) RecordRun(r Run)            { s.enqueue(req{kind: reqRun, run: r}) }
func (s *SQLiteIndex) RecordSphere(r SphereRow)   { s.enqueue(req{kind: reqSphere, sphere: r}) }
func (s *SQLiteIndex) RecordCity(r CityRow)       { s.enqueue(req{kind: reqCity, city: r}) }
func (s *SQLiteIndex) RecordHighway(r HighwayRow) { s.enqueue(req{kind: reqHighway, highway: r}) }
func (s *SQLiteIndex) RecordRail(r RailRow)       { s.enqueue(req{kind: reqRail, rail: r}) }

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	stmts := map[reqKind]string{
		reqRun:     `INSERT OR REPLACE INTO runs(id,dimension,profile,seed,min_x,min_z,max_x,max_z,started_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		reqSphere:  `INSERT OR REPLACE INTO spheres(run_id,x,z,enabled,north,south,west,east,radius,glass,base,side) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		reqCity:    `INSERT OR REPLACE INTO cities(run_id,x,z,is_center,radius) VALUES(?,?,?,?,?)`,
		reqHighway: `INSERT OR REPLACE INTO highways(run_id,x,z,x_level,z_level) VALUES(?,?,?,?,?)`,
		reqRail:    `INSERT OR REPLACE INTO rails(run_id,x,z,type) VALUES(?,?,?,?)`,
	}
	prepared := map[reqKind]*sql.Stmt{}
	for k, q := range stmts {
		st, err := s.db.Prepare(q)
		if err != nil {
			s.logf("indexdb: prepare %d: %v", k, err)
			continue
		}
		prepared[k] = st
	}
	defer func() {
		for _, st := range prepared {
			_ = st.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		pending       uint64
		lastCommit    = time.Now()
		commitEvery   = 4000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			s.logf("indexdb: begin: %v", err)
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.sendFailed.Add(pending)
			s.logf("indexdb: commit %d rows: %v", pending, err)
		}
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	// rollback discards the open transaction; its rows count as failed.
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		s.sendFailed.Add(pending)
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		st := prepared[r.kind]
		if st == nil {
			s.sendFailed.Add(1)
			continue
		}
		begin()
		if tx == nil {
			s.sendFailed.Add(1)
			continue
		}
		if _, err := tx.Stmt(st).Exec(args(r)...); err != nil {
			s.sendFailed.Add(1)
			s.logf("indexdb: insert kind=%d: %v", r.kind, err)
			rollback()
			continue
		}
		opCount++
		pending++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

func (s *SQLiteIndex) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func args(r req) []any {
	switch r.kind {
	case reqRun:
		x := r.run
		return []any{x.ID, x.Dimension, x.Profile, x.Seed, x.MinX, x.MinZ, x.MaxX, x.MaxZ, x.StartedAt}
	case reqSphere:
		x := r.sphere
		return []any{x.RunID, x.X, x.Z, x.Enabled, x.North, x.South, x.West, x.East, float64(x.Radius), x.Glass, x.Base, x.Side}
	case reqCity:
		x := r.city
		return []any{x.RunID, x.X, x.Z, x.IsCenter, float64(x.Radius)}
	case reqHighway:
		x := r.highway
		return []any{x.RunID, x.X, x.Z, x.XLevel, x.ZLevel}
	case reqRail:
		x := r.rail
		return []any{x.RunID, x.X, x.Z, x.Type}
	}
	return nil
}
