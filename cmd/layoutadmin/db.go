package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"citylayout.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	runID := fs.String("run", "", "run id (defaults to the latest run)")
	limit := fs.Int("limit", 20, "result limit")
	enabled := fs.Bool("enabled", false, "only enabled spheres")
	_ = fs.Parse(args)

	q := "runs"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "layout.sqlite")
	}
	if *limit <= 0 {
		*limit = 20
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if q == "runs" {
		runs, err := queryRuns(db, *limit)
		exitOn("query", err)
		for _, r := range runs {
			printJSON(r)
		}
		return
	}

	if *runID == "" {
		runs, err := queryRuns(db, 1)
		exitOn("latest run", err)
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "no runs found")
			os.Exit(2)
		}
		*runID = runs[0].ID
	}

	switch q {
	case "spheres":
		rows, err := querySpheres(db, *runID, *enabled, *limit)
		exitOn("query", err)
		for _, r := range rows {
			printJSON(r)
		}
	case "cities":
		rows, err := queryCities(db, *runID, *limit)
		exitOn("query", err)
		for _, r := range rows {
			printJSON(r)
		}
	case "rails":
		rows, err := queryRails(db, *runID, *limit)
		exitOn("query", err)
		for _, r := range rows {
			printJSON(r)
		}
	case "counts":
		c, err := queryCounts(db, *runID)
		exitOn("query", err)
		printJSON(c)
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		os.Exit(2)
	}
}

func exitOn(what string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
		os.Exit(1)
	}
}

func queryRuns(db *sql.DB, limit int) ([]indexdb.Run, error) {
	rows, err := db.Query(`SELECT id,dimension,profile,seed,min_x,min_z,max_x,max_z,started_at FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []indexdb.Run
	for rows.Next() {
		var r indexdb.Run
		if err := rows.Scan(&r.ID, &r.Dimension, &r.Profile, &r.Seed, &r.MinX, &r.MinZ, &r.MaxX, &r.MaxZ, &r.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func querySpheres(db *sql.DB, runID string, enabledOnly bool, limit int) ([]indexdb.SphereRow, error) {
	q := `SELECT run_id,x,z,enabled,north,south,west,east,radius,COALESCE(glass,''),COALESCE(base,''),COALESCE(side,'') FROM spheres WHERE run_id=?`
	if enabledOnly {
		q += ` AND enabled=1`
	}
	q += ` ORDER BY x,z LIMIT ?`
	rows, err := db.Query(q, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []indexdb.SphereRow
	for rows.Next() {
		var r indexdb.SphereRow
		if err := rows.Scan(&r.RunID, &r.X, &r.Z, &r.Enabled, &r.North, &r.South, &r.West, &r.East, &r.Radius, &r.Glass, &r.Base, &r.Side); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryCities(db *sql.DB, runID string, limit int) ([]indexdb.CityRow, error) {
	rows, err := db.Query(`SELECT run_id,x,z,is_center,radius FROM cities WHERE run_id=? ORDER BY x,z LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []indexdb.CityRow
	for rows.Next() {
		var r indexdb.CityRow
		if err := rows.Scan(&r.RunID, &r.X, &r.Z, &r.IsCenter, &r.Radius); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryRails(db *sql.DB, runID string, limit int) ([]indexdb.RailRow, error) {
	rows, err := db.Query(`SELECT run_id,x,z,type FROM rails WHERE run_id=? ORDER BY x,z LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []indexdb.RailRow
	for rows.Next() {
		var r indexdb.RailRow
		if err := rows.Scan(&r.RunID, &r.X, &r.Z, &r.Type); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type runCounts struct {
	RunID    string `json:"run_id"`
	Spheres  int    `json:"spheres"`
	Enabled  int    `json:"enabled_spheres"`
	Cities   int    `json:"cities"`
	Highways int    `json:"highways"`
	Rails    int    `json:"rails"`
}

func queryCounts(db *sql.DB, runID string) (runCounts, error) {
	c := runCounts{RunID: runID}
	row := db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM spheres WHERE run_id=?1),
		(SELECT COUNT(*) FROM spheres WHERE run_id=?1 AND enabled=1),
		(SELECT COUNT(*) FROM cities WHERE run_id=?1),
		(SELECT COUNT(*) FROM highways WHERE run_id=?1),
		(SELECT COUNT(*) FROM rails WHERE run_id=?1)`, runID)
	err := row.Scan(&c.Spheres, &c.Enabled, &c.Cities, &c.Highways, &c.Rails)
	return c, err
}
