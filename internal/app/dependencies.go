// Package app wires shared infrastructure dependencies for the quote service.
package app

import (
	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
)

// NewValidator returns the request validator shared by HTTP handlers.
func NewValidator() *validator.Validate {
	return validator.New()
}

// RunMigrations applies pending migrations, treating no-change as success.
func RunMigrations(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
