// Package storage defines the snapshot persistence boundary. Drivers live in
// the sqlite and postgres subpackages; Memory serves tests and the
// persistence-free mode.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/inventory"
)

// ErrNotFound is returned by Load when the slot holds no snapshot.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotVersion is the format written by Encode.
const SnapshotVersion = 1

// Snapshot is the complete resumable state of one game.
type Snapshot struct {
	Version     int                     `json:"version"`
	Progression character.Progression   `json:"progression"`
	RNGState    int64                   `json:"rng_state"`
	Backpack    inventory.BackpackState `json:"backpack"`
	SavedAt     time.Time               `json:"saved_at"`
}

// Store persists snapshots by slot name.
type Store interface {
	// Save writes snap to slot, replacing any previous snapshot.
	Save(ctx context.Context, slot string, snap Snapshot) error
	// Load returns the snapshot in slot or ErrNotFound.
	Load(ctx context.Context, slot string) (Snapshot, error)
}

// Encode serialises snap, stamping the current format version.
func Encode(snap Snapshot) ([]byte, error) {
	snap.Version = SnapshotVersion
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses data and validates the restored character.
//
// Postcondition: returns an error for malformed data, an unknown version or
// a character that violates its invariants.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("decoding snapshot: unsupported version %d", snap.Version)
	}
	if err := snap.Progression.Character.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// Memory is an in-process Store holding encoded snapshots.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, slot string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = data
	return nil
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context, slot string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	data, ok := m.slots[slot]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return Decode(data)
}
