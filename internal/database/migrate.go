package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// NewMigrator opens the migrations in dir against databaseURL.
func NewMigrator(dir, databaseURL string) (*migrate.Migrate, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. An up-to-date schema is not an error.
func MigrateUp(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
