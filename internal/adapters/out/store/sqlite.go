package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
)

// Ensure SQLite implements out.Persister.
var _ out.Persister = (*SQLite)(nil)

const createResourcesTable = `
CREATE TABLE IF NOT EXISTS resources (
    kind TEXT NOT NULL,
    id TEXT NOT NULL,
    data BLOB NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (kind, id)
);`

// SQLite persists resources as JSON blobs in a single table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	// Single writer keeps write-through ordering identical to call order.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		createResourcesTable,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Save upserts one resource record.
func (s *SQLite) Save(ctx context.Context, kind domain.Kind, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO resources (kind, id, data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(kind), id, data, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", kind, id, err)
	}
	return nil
}

// Delete removes one resource record. Missing records are not an error.
func (s *SQLite) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	return nil
}

// LoadAll returns every persisted record ordered by kind and id.
func (s *SQLite) LoadAll(ctx context.Context) ([]out.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, id, data, updated_at FROM resources ORDER BY kind, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var records []out.Record
	for rows.Next() {
		var (
			kind, id string
			data     []byte
			updated  int64
		)
		if err := rows.Scan(&kind, &id, &data, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		records = append(records, out.Record{
			Kind:      domain.Kind(kind),
			ID:        id,
			Data:      data,
			UpdatedAt: time.Unix(0, updated),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read resources: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
