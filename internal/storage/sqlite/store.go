// Package sqlite provides a SQLite-backed snapshot store for local save slots.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/cultivation/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	slot       TEXT    PRIMARY KEY,
	day        INTEGER NOT NULL,
	realm      TEXT    NOT NULL,
	data       BLOB    NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store persists snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite snapshot store and creates its schema.
//
// Precondition: path is non-empty; ":memory:" opens a private database.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, slot string, snap storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slot) == "" {
		return fmt.Errorf("slot is required")
	}
	data, err := storage.Encode(snap)
	if err != nil {
		return err
	}
	updatedAt := snap.SavedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (slot, day, realm, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   day = excluded.day,
		   realm = excluded.realm,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		slot,
		snap.Progression.Day,
		snap.Progression.Character.Realm.String(),
		data,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", slot, err)
	}
	return nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context, slot string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Snapshot{}, fmt.Errorf("storage is not configured")
	}
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Snapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load snapshot %q: %w", slot, err)
	}
	return storage.Decode(data)
}

// Slots lists the stored slot names ordered by most recent save.
func (s *Store) Slots(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT slot FROM snapshots ORDER BY updated_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}
