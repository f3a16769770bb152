package repomanager

import (
	"context"
	"database/sql"

	"lifeos/internal/dbx"
	"lifeos/internal/server/repositories/logs"
)

// RepositoryManager vends repository implementations for a concrete store
// and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Logs(db dbx.DBTX) logs.Repository
}
