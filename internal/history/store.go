// Package history keeps a local SQLite log of predictions so the latest
// result can be reopened and past scores compared.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/rshade/ecopredict/internal/score"
)

// ErrNoHistory is returned by Latest when nothing has been recorded.
var ErrNoHistory = errors.New("no predictions recorded")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// Record is one stored prediction.
type Record struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Input     score.Input  `json:"input"`
	Result    score.Result `json:"result"`
}

// Store is a SQLite-backed prediction history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path cannot be empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	// One writer keeps SQLite lock contention out of the CLI and server.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring history %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenWithSchema opens the database and ensures its schema.
func OpenWithSchema(ctx context.Context, path string) (*Store, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err = s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// EnsureSchema creates the predictions table and index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS predictions (
  id TEXT PRIMARY KEY,
  created_at INTEGER NOT NULL,
  predicted_score REAL NOT NULL,
  input_json TEXT NOT NULL,
  result_json TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("creating predictions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);`); err != nil {
		return fmt.Errorf("creating predictions index: %w", err)
	}
	return nil
}

// Save stores rec, assigning a UUID and timestamp when they are unset.
// The stored record is returned.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	in, err := json.Marshal(rec.Input)
	if err != nil {
		return Record{}, fmt.Errorf("encoding input: %w", err)
	}
	res, err := json.Marshal(rec.Result)
	if err != nil {
		return Record{}, fmt.Errorf("encoding result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO predictions (id, created_at, predicted_score, input_json, result_json)
VALUES (?, ?, ?, ?, ?)
`, rec.ID, rec.CreatedAt.UnixNano(), rec.Result.PredictedScore, string(in), string(res))
	if err != nil {
		return Record{}, fmt.Errorf("saving prediction %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Latest returns the most recent record, or ErrNoHistory.
func (s *Store) Latest(ctx context.Context) (Record, error) {
	recs, err := s.List(ctx, 1)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNoHistory
	}
	return recs[0], nil
}

// List returns up to limit records, newest first. A limit <= 0 uses
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, input_json, result_json
FROM predictions
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing predictions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec           Record
			createdAt     int64
			inJSON, rJSON string
		)
		if err = rows.Scan(&rec.ID, &createdAt, &inJSON, &rJSON); err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		if err = json.Unmarshal([]byte(inJSON), &rec.Input); err != nil {
			return nil, fmt.Errorf("decoding input of %s: %w", rec.ID, err)
		}
		if err = json.Unmarshal([]byte(rJSON), &rec.Result); err != nil {
			return nil, fmt.Errorf("decoding result of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting predictions: %w", err)
	}
	return n, nil
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM predictions`)
	if err != nil {
		return 0, fmt.Errorf("clearing predictions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
