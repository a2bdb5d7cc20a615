package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/infrastructure/postgres/migrations"
)

// Migrator applies the ledger schema.
type Migrator struct {
	databaseURL    string
	migrationsPath string
	logger         zerolog.Logger
}

// NewMigrator creates a Migrator. An empty migrationsPath uses the
// migrations embedded in the binary.
func NewMigrator(databaseURL, migrationsPath string, logger zerolog.Logger) *Migrator {
	return &Migrator{
		databaseURL:    databaseURL,
		migrationsPath: migrationsPath,
		logger:         logger.With().Str("component", "migrator").Logger(),
	}
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	mg, err := m.instance()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info().Msg("database migrations: applied successfully")
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down() error {
	mg, err := m.instance()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info().Msg("database migrations: rolled back successfully")
	return nil
}

func (m *Migrator) instance() (*migrate.Migrate, error) {
	var (
		mg  *migrate.Migrate
		err error
	)
	if m.migrationsPath != "" {
		mg, err = migrate.New("file://"+m.migrationsPath, m.databaseURL)
	} else {
		var src source.Driver
		if src, err = migrationSource(); err == nil {
			mg, err = migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mg, nil
}

func migrationSource() (source.Driver, error) {
	return iofs.New(migrations.FS, ".")
}
