package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("storage: replay not found")

// ReplayEntry — строка индекса реплеев.
type ReplayEntry struct {
	MatchID     string    `json:"matchId"`
	Path        string    `json:"path"`
	Seed        int64     `json:"seed"`
	TickRate    int32     `json:"tickRate"`
	Frames      int       `json:"frames"`
	FinalTick   int64     `json:"finalTick"`
	FinalDigest string    `json:"finalDigest"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Index — SQLite-индекс записанных реплеев. Сами кадры лежат в файлах.
type Index struct {
	db *sql.DB
}

func OpenIndex(path string) (*Index, error) {
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
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS replays (
		match_id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		seed INTEGER NOT NULL,
		tick_rate INTEGER NOT NULL,
		frames INTEGER NOT NULL,
		final_tick INTEGER NOT NULL,
		final_digest TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);`)
	return err
}

// Record добавляет (или перезаписывает) запись о реплее.
func (ix *Index) Record(ctx context.Context, e ReplayEntry) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO replays (match_id, path, seed, tick_rate, frames, final_tick, final_digest, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.MatchID, e.Path, e.Seed, e.TickRate, e.Frames, e.FinalTick, e.FinalDigest,
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// List — все реплеи, свежие первыми.
func (ix *Index) List(ctx context.Context) ([]ReplayEntry, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT match_id, path, seed, tick_rate, frames, final_tick, final_digest, recorded_at
		 FROM replays ORDER BY recorded_at DESC, match_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReplayEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Find ищет реплей по ID матча.
func (ix *Index) Find(ctx context.Context, matchID string) (ReplayEntry, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT match_id, path, seed, tick_rate, frames, final_tick, final_digest, recorded_at
		 FROM replays WHERE match_id = ?`, matchID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	}
	return e, err
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (ReplayEntry, error) {
	var (
		e  ReplayEntry
		at string
	)
	if err := s.Scan(&e.MatchID, &e.Path, &e.Seed, &e.TickRate, &e.Frames, &e.FinalTick, &e.FinalDigest, &at); err != nil {
		return e, err
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return e, fmt.Errorf("recorded_at %q: %w", at, err)
	}
	e.RecordedAt = t
	return e, nil
}
