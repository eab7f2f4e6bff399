// Package repomanager builds repositories on top of a shared database handle.
// Passing a dbx.DBTX lets callers run a repository both on the connection pool
// and inside an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/finapi/internal/dbx"
	"github.com/dmitrijs2005/finapi/internal/server/repositories/statements"
	"github.com/dmitrijs2005/finapi/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Statements(db dbx.DBTX) statements.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
