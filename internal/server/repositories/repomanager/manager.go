package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/urgekeeper/internal/dbx"
	"github.com/dmitrijs2005/urgekeeper/internal/server/repositories/records"
)

// RepositoryManager runs schema migrations and vends repositories bound to
// either a *sql.DB or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db dbx.DBTX) records.Repository
}
