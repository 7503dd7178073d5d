// Package store persists conversion job history in a local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Conversion statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

var ErrNotFound = errors.New("conversion not found")

type Conversion struct {
	ID         int64     `json:"id"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Format     string    `json:"format,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    input TEXT NOT NULL,
    output TEXT NOT NULL,
    format TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status);
`

type ConversionStore struct {
	db *sql.DB
	l  *slog.Logger
}

func NewConversionStore(dataDir string) (*ConversionStore, error) {
	dbPath := filepath.Join(dataDir, "robot-obo-tool.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &ConversionStore{
		db: db,
		l:  slog.With(slog.String("component", "conversion-store")),
	}, nil
}

func (s *ConversionStore) Close() error {
	return s.db.Close()
}

// Create inserts a pending conversion and fills in its ID and timestamps.
func (s *ConversionStore) Create(c *Conversion) error {
	now := time.Now().UTC()
	c.Status = StatusPending
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO conversions (input, output, format, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.db.QueryRow(query,
		c.Input, c.Output, c.Format, c.Status, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// SetRunning marks a conversion as started.
func (s *ConversionStore) SetRunning(id int64) error {
	return s.update(id, StatusRunning, "", 0)
}

// Finish records the terminal status of a conversion.
func (s *ConversionStore) Finish(id int64, errMsg string, duration time.Duration) error {
	status := StatusDone
	if errMsg != "" {
		status = StatusFailed
	}
	return s.update(id, status, errMsg, duration)
}

func (s *ConversionStore) update(id int64, status, errMsg string, duration time.Duration) error {
	query := `UPDATE conversions SET status = ?, error = ?, duration_ms = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.Exec(query, status, errMsg, duration.Milliseconds(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update conversion %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update conversion %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *ConversionStore) Get(id int64) (*Conversion, error) {
	query := `
		SELECT id, input, output, format, status, error, duration_ms, created_at, updated_at
		FROM conversions WHERE id = ?
	`
	c := &Conversion{}
	err := s.db.QueryRow(query, id).Scan(
		&c.ID, &c.Input, &c.Output, &c.Format, &c.Status,
		&c.Error, &c.DurationMS, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversion %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion %d: %w", id, err)
	}
	return c, nil
}

// List returns the most recent conversions, newest first.
func (s *ConversionStore) List(limit int) ([]*Conversion, error) {
	query := `
		SELECT id, input, output, format, status, error, duration_ms, created_at, updated_at
		FROM conversions ORDER BY id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []*Conversion
	for rows.Next() {
		c := &Conversion{}
		err := rows.Scan(
			&c.ID, &c.Input, &c.Output, &c.Format, &c.Status,
			&c.Error, &c.DurationMS, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
