package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/wastehub/internal/dbx"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/deposits"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so one unit of work can span several of them.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Deposits(db dbx.DBTX) deposits.Repository
	Ledger(db dbx.DBTX) ledger.Repository
}
