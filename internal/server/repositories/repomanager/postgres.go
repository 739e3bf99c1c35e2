// Package repomanager provides the PostgreSQL RepositoryManager, wiring
// repository constructors together with goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/server/migrations"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/champions"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/pool"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/teams"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Ledger(db dbx.DBTX) ledger.Repository {
	return ledger.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Champions(db dbx.DBTX) champions.Repository {
	return champions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Teams(db dbx.DBTX) teams.Repository {
	return teams.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Pool(db dbx.DBTX) pool.Repository {
	return pool.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// OpenDB opens a pgx-backed *sql.DB and checks connectivity.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}
