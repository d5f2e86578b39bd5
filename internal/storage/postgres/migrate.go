package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cory-johannsen/cultivation/internal/config"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationResult reports the schema version after Migrate.
type MigrationResult struct {
	Version uint
	Dirty   bool
	// Changed is false when the schema was already at the target.
	Changed bool
}

// Migrate moves the schema in dir by steps migrations in direction, or all
// the way when steps is zero.
//
// Precondition: dir holds golang-migrate *.up.sql / *.down.sql pairs.
// Postcondition: Returns the resulting version, or a wrapped error.
func Migrate(cfg config.DatabaseConfig, dir string, direction Direction, steps int) (MigrationResult, error) {
	if steps < 0 {
		return MigrationResult{}, fmt.Errorf("steps must be >= 0, got %d", steps)
	}
	if direction != Up && direction != Down {
		return MigrationResult{}, fmt.Errorf("invalid direction %q: must be %q or %q", direction, Up, Down)
	}
	m, err := migrate.New("file://"+dir, cfg.DSN())
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case direction == Up && steps > 0:
		err = m.Steps(steps)
	case direction == Up:
		err = m.Up()
	case steps > 0:
		err = m.Steps(-steps)
	default:
		err = m.Down()
	}

	res := MigrationResult{Changed: true}
	if errors.Is(err, migrate.ErrNoChange) {
		res.Changed = false
		err = nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("migrating %s: %w", direction, err)
	}

	res.Version, res.Dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return res, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("reading schema version: %w", err)
	}
	return res, nil
}
