package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkveil/inkveil/internal/client/migrations"
	"github.com/inkveil/inkveil/internal/client/repositories/credentials"
	"github.com/inkveil/inkveil/internal/client/repositories/entries"
	"github.com/inkveil/inkveil/internal/client/repositories/metadata"
	"github.com/inkveil/inkveil/internal/client/repositories/switches"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the local store's repositories over one SQLite
// handle.
type Repositories struct {
	Metadata    metadata.Repository
	Entries     entries.Repository
	Credentials credentials.Repository
	Switches    switches.Repository
	DB          *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local store, applies migrations and wires the
// repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Metadata:    metadata.NewSQLiteRepository(db),
		Entries:     entries.NewSQLiteRepository(db),
		Credentials: credentials.NewSQLiteRepository(db),
		Switches:    switches.NewSQLiteRepository(db),
		DB:          db,
	}, nil
}
