// Package repomanager vends repository implementations bound to a database
// handle and exposes a schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mpetrenko/hrauth/internal/dbx"
	"github.com/mpetrenko/hrauth/internal/server/repositories/principals"
	"github.com/mpetrenko/hrauth/internal/server/repositories/records"
	"github.com/mpetrenko/hrauth/internal/server/repositories/revocations"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Principals(db dbx.DBTX) principals.Repository
	Revocations(db dbx.DBTX) revocations.Repository
	Employees(db dbx.DBTX) records.EmployeeRepository
}
