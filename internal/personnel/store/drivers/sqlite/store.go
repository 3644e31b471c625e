// Package sqlite opens the personnel store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/sqlstore"
	_ "modernc.org/sqlite"
)

var dialect = sqlstore.Dialect{
	Name:              "sqlite",
	IsUniqueViolation: isUniqueViolation,
}

// NewStore opens dsn, which is a file path, a file: URI or ":memory:".
func NewStore(dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is its own database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, dialect, applyMigrations), nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// withForeignKeys makes every pooled connection enable foreign keys, not just
// the one the PRAGMA above happened to run on.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
