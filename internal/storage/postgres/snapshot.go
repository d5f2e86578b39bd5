package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cultivation/internal/storage"
)

// SlotInfo summarises one stored snapshot without decoding it.
type SlotInfo struct {
	Slot      string
	Name      string
	Realm     string
	Day       int
	Lifetimes int
	UpdatedAt time.Time
}

// SnapshotRepository stores snapshots in the snapshots table.
// It implements storage.Store.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save upserts snap into slot.
//
// Precondition: slot must be non-empty.
// Postcondition: The row for slot holds the encoded snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, slot string, snap storage.Snapshot) error {
	if slot == "" {
		return errors.New("slot must not be empty")
	}
	data, err := storage.Encode(snap)
	if err != nil {
		return err
	}
	c := snap.Progression.Character
	_, err = r.db.Exec(ctx, `
		INSERT INTO snapshots (slot, name, realm, day, lifetimes, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (slot) DO UPDATE SET
			name = EXCLUDED.name,
			realm = EXCLUDED.realm,
			day = EXCLUDED.day,
			lifetimes = EXCLUDED.lifetimes,
			data = EXCLUDED.data,
			updated_at = NOW()`,
		slot, c.Name, c.Realm.String(), snap.Progression.Day, snap.Progression.Soul.Lifetimes, data,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", slot, err)
	}
	return nil
}

// Load returns the snapshot stored in slot.
//
// Postcondition: Returns storage.ErrNotFound when no row exists.
func (r *SnapshotRepository) Load(ctx context.Context, slot string) (storage.Snapshot, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT data FROM snapshots WHERE slot = $1`, slot).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("loading snapshot %q: %w", slot, err)
	}
	return storage.Decode(data)
}

// List returns a summary of every stored slot, most recently saved first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SnapshotRepository) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT slot, name, realm, day, lifetimes, updated_at
		FROM snapshots ORDER BY updated_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var s SlotInfo
		if err := rows.Scan(&s.Slot, &s.Name, &s.Realm, &s.Day, &s.Lifetimes, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}
	return out, nil
}

// Delete removes slot.
//
// Postcondition: Returns storage.ErrNotFound when no row was removed.
func (r *SnapshotRepository) Delete(ctx context.Context, slot string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE slot = $1`, slot)
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", slot, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
