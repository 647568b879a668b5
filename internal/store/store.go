// Package store opens the local database, applies schema migrations, and
// wires up the per-entity repositories.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fairwaylabs/scorecard/internal/migrations"
	"github.com/fairwaylabs/scorecard/internal/store/clubs"
	"github.com/fairwaylabs/scorecard/internal/store/courses"
	"github.com/fairwaylabs/scorecard/internal/store/holes"
	"github.com/fairwaylabs/scorecard/internal/store/rounds"
	"github.com/fairwaylabs/scorecard/internal/store/syncqueue"
	"github.com/fairwaylabs/scorecard/internal/store/users"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Stores aggregates the repositories bound to one database handle.
type Stores struct {
	DB       *sql.DB
	Users    users.Repository
	Clubs    clubs.Repository
	Courses  courses.Repository
	HoleDefs courses.HoleDefinitionRepository
	Rounds   rounds.Repository
	Holes    holes.Repository
	Queue    syncqueue.Repository
}

// RunMigrations applies all pending schema migrations. Migrations are
// additive, so existing unsynced rows survive an upgrade.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if necessary) the sqlite database at dsn,
// migrates it to the current schema version, and returns the repository set.
func InitDatabase(ctx context.Context, dsn string) (*Stores, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Stores{
		DB:       db,
		Users:    users.NewSQLiteRepository(db),
		Clubs:    clubs.NewSQLiteRepository(db),
		Courses:  courses.NewSQLiteRepository(db),
		HoleDefs: courses.NewSQLiteHoleDefinitionRepository(db),
		Rounds:   rounds.NewSQLiteRepository(db),
		Holes:    holes.NewSQLiteRepository(db),
		Queue:    syncqueue.NewSQLiteRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (s *Stores) Close() error {
	return s.DB.Close()
}
