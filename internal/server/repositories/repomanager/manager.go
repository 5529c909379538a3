package repomanager

import (
	"context"
	"database/sql"

	"github.com/inkveil/inkveil/internal/dbx"
	"github.com/inkveil/inkveil/internal/server/repositories/entries"
	"github.com/inkveil/inkveil/internal/server/repositories/refreshtokens"
	"github.com/inkveil/inkveil/internal/server/repositories/switches"
	"github.com/inkveil/inkveil/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
	Switches(db dbx.DBTX) switches.Repository
}
