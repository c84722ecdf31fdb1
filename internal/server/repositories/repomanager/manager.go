package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/timekeeper/internal/dbx"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/timesheets"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can run
// several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Timesheets(db dbx.DBTX) timesheets.Repository
}
