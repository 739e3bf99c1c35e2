package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pointpool/internal/client/migrations"
	"github.com/dmitrijs2005/pointpool/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pointpool/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories is the local client state.
type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the sqlite file at dsn and brings
// its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if dsn != ":memory:" {
		var err error
		if dsn, err = filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
	}, nil
}
