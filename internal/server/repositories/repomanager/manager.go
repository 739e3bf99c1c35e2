package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/champions"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/pool"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/teams"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// pick *sql.DB for single statements or a *sql.Tx for units of work.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Ledger(db dbx.DBTX) ledger.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Champions(db dbx.DBTX) champions.Repository
	Teams(db dbx.DBTX) teams.Repository
	Pool(db dbx.DBTX) pool.Repository
}
