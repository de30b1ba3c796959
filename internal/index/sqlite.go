// Package index records generation attempts in a SQLite database.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tomster12/growth-sub000/pkg/world"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one recorded generation attempt.
type Run struct {
	ID             string    `json:"id"`
	Seed           int64     `json:"seed"`
	Attempt        int       `json:"attempt"`
	Stage          string    `json:"stage"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	Sites          int       `json:"sites"`
	BoundaryEdges  int       `json:"boundary_edges"`
	BoundaryLength float64   `json:"boundary_length"`
	ElapsedMS      int64     `json:"elapsed_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromAttempt converts a pipeline attempt into a run row.
func FromAttempt(a world.Attempt) Run {
	r := Run{
		ID:        a.RunID,
		Seed:      a.Seed,
		Attempt:   a.Attempt,
		Stage:     a.Stage,
		Status:    StatusOK,
		ElapsedMS: a.Elapsed.Milliseconds(),
		CreatedAt: a.Finished.UTC(),
	}
	if a.Err != nil {
		r.Status = StatusFailed
		r.Error = a.Err.Error()
	}
	if a.World != nil && a.World.Graph != nil {
		r.Sites = len(a.World.Graph.Sites)
		r.BoundaryEdges = len(a.World.Graph.Boundary)
		r.BoundaryLength = a.World.Graph.BoundaryLength()
	}
	return r
}

// Index is a SQLite store of runs.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index at path.
func Open(path string) (*Index, error) {
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
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			attempt INTEGER NOT NULL,
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			sites INTEGER NOT NULL DEFAULT 0,
			boundary_edges INTEGER NOT NULL DEFAULT 0,
			boundary_length REAL NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS runs_seed ON runs(seed);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Record inserts or replaces one run.
func (x *Index) Record(ctx context.Context, r Run) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(id,seed,attempt,stage,status,error,sites,boundary_edges,boundary_length,elapsed_ms,created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Seed, r.Attempt, r.Stage, r.Status, r.Error,
		r.Sites, r.BoundaryEdges, r.BoundaryLength, r.ElapsedMS, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (x *Index) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT id,seed,attempt,stage,status,error,sites,boundary_edges,boundary_length,elapsed_ms,created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Seed, &r.Attempt, &r.Stage, &r.Status, &r.Error,
			&r.Sites, &r.BoundaryEdges, &r.BoundaryLength, &r.ElapsedMS, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}
