package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/dans-labs/pidgen/internal/kind"
)

// sqliteDialect targets embedded SQLite via mattn/go-sqlite3, useful for
// single-instance deployments and for the engine's own test suite. SQLite
// has no row-level locking; Open configures the DSN with
// "_txlock=immediate" so BeginTx acquires a RESERVED lock up front,
// serializing writers exactly the way a row lock would on the other
// backends. See Open's dsn construction.
type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite3" }

func (sqliteDialect) beginTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	// Isolation is enforced by the "_txlock=immediate" DSN option, not by
	// sql.TxOptions - go-sqlite3 only understands the default isolation
	// level and rejects anything else.
	return db.BeginTx(ctx, nil)
}

func (sqliteDialect) selectSeedForUpdate(k kind.Kind) (string, []any) {
	return `SELECT value FROM seed WHERE type = ?`, []any{string(k)}
}

func (sqliteDialect) insertSeed(k kind.Kind, v uint64) (string, []any) {
	return `INSERT INTO seed (type, value) VALUES (?, ?)`, []any{string(k), int64(v)}
}

func (sqliteDialect) updateSeed(k kind.Kind, v uint64) (string, []any) {
	return `UPDATE seed SET value = ? WHERE type = ?`, []any{int64(v), string(k)}
}

func (sqliteDialect) selectPid(k kind.Kind, id string) (string, []any) {
	return `SELECT created FROM minted WHERE type = ? AND identifier = ?`, []any{string(k), id}
}

func (sqliteDialect) insertPid(k kind.Kind, id string, created time.Time) (string, []any) {
	return `INSERT INTO minted (type, identifier, created) VALUES (?, ?, ?)`, []any{string(k), id, created}
}

func (sqliteDialect) isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error

	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}

func (sqliteDialect) createTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS seed (
			type  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS minted (
			type       TEXT NOT NULL REFERENCES seed(type),
			identifier TEXT NOT NULL,
			created    DATETIME NOT NULL,
			PRIMARY KEY (type, identifier)
		)`,
	}
}
