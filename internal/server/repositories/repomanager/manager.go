// Package repomanager selects and opens the credential store backend named by
// the configured DSN and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/bpay/bpay/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

const (
	schemePostgres   = "postgres://"
	schemePostgreSQL = "postgresql://"
	schemeSQLite     = "sqlite://"
	schemeFile       = "file:"
	schemeMemory     = "memory://"
)

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New opens the backend selected by dsn:
//
//	postgres://... or postgresql://...  PostgreSQL via pgx
//	sqlite://path or file:path          SQLite file
//	memory://                           process-local map
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	switch {
	case strings.HasPrefix(dsn, schemePostgres), strings.HasPrefix(dsn, schemePostgreSQL):
		return NewPostgresRepositoryManager(ctx, dsn)
	case strings.HasPrefix(dsn, schemeSQLite), strings.HasPrefix(dsn, schemeFile):
		return NewSQLiteRepositoryManager(ctx, dsn)
	case dsn == schemeMemory || dsn == "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database DSN scheme: %q", scheme(dsn))
	}
}

func scheme(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i]
	}
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i]
	}
	return dsn
}
