package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/bpay/bpay/internal/dbx"
	"github.com/bpay/bpay/internal/filex"
	"github.com/bpay/bpay/internal/server/migrations"
	"github.com/bpay/bpay/internal/server/repositories/users"
)

const sqliteDefaultParams = "_busy_timeout=5000&_journal_mode=WAL"

// SQLiteRepositoryManager serves repositories backed by a single SQLite file.
type SQLiteRepositoryManager struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepositoryManager opens (creating if needed) the database file
// named by dsn. The pool is capped at one connection; SQLite has a single
// writer anyway.
func NewSQLiteRepositoryManager(ctx context.Context, dsn string) (*SQLiteRepositoryManager, error) {
	path, driverDSN := sqliteDSN(dsn)
	if path == "" {
		return nil, fmt.Errorf("sqlite DSN has no file path: %q", dsn)
	}

	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("sqlite data dir: %w", err)
	}

	db, err := dbx.Open(ctx, "sqlite3", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteRepositoryManager{db: db, path: path}, nil
}

// sqliteDSN returns the file path and the DSN handed to mattn/go-sqlite3.
// Caller-supplied query parameters win over the defaults.
func sqliteDSN(dsn string) (path, driverDSN string) {
	rest := strings.TrimPrefix(strings.TrimPrefix(dsn, schemeSQLite), schemeFile)

	query := ""
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, query = rest[:i], rest[i+1:]
	}
	if rest == "" {
		return "", ""
	}

	if query == "" {
		query = sqliteDefaultParams
	} else if !strings.Contains(query, "_busy_timeout") {
		query = query + "&_busy_timeout=5000"
	}
	return rest, schemeFile + rest + "?" + query
}

func (m *SQLiteRepositoryManager) Users() users.Repository {
	return users.NewSQLiteRepository(m.db)
}

// RunMigrations applies the embedded sqlite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "sqlite"); err != nil {
		return fmt.Errorf("sqlite migrations: %w", err)
	}
	return nil
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}
