package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/newsmarks/internal/client/migrations"
	"github.com/dmitrijs2005/newsmarks/internal/client/repositories/highlights"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the client's local stores together with the raw
// database handle (needed for transactional merge swaps).
type Repositories struct {
	DB         *sql.DB
	Highlights highlights.Repository
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local SQLite database at dsn,
// applies migrations, and returns the repository bundle.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return &Repositories{
		DB:         db,
		Highlights: highlights.NewSQLiteRepository(db),
	}, nil
}
