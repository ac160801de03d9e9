package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dans-labs/pidgen/internal/kind"
)

// dialect isolates the SQL text, argument order, and transaction-locking
// mechanics that differ across backends. Store never branches on driver
// name outside of Open; every query path goes through the dialect the
// Store was opened with. Each statement method returns both the query text
// and its bound arguments together, so placeholder order (whether "$1"
// numbered or "?" positional) can never drift out of sync with argument
// order on a per-dialect basis.
type dialect interface {
	// name identifies the dialect for error messages and logging.
	name() string

	// beginTx opens a transaction with whatever isolation mechanism the
	// backend needs to make getSeed -> setSeed conflict-serializable:
	// SERIALIZABLE isolation for the SQL-standard backends, or an
	// immediate/exclusive lock for SQLite.
	beginTx(ctx context.Context, db *sql.DB) (*sql.Tx, error)

	// selectSeedForUpdate reads the current seed for a kind while taking
	// whatever row lock the backend offers, so a concurrent transaction
	// blocks until this one commits or rolls back.
	selectSeedForUpdate(k kind.Kind) (query string, args []any)

	insertSeed(k kind.Kind, v uint64) (query string, args []any)
	updateSeed(k kind.Kind, v uint64) (query string, args []any)
	selectPid(k kind.Kind, id string) (query string, args []any)
	insertPid(k kind.Kind, id string, created time.Time) (query string, args []any)

	// isUniqueViolation reports whether err is a unique/primary-key
	// constraint violation from this backend's driver, used to translate
	// a failed InitSeed or AddPid into ErrAlreadyInitialized /
	// ErrDuplicateIdentifier instead of a generic QueryError.
	isUniqueViolation(err error) bool

	// createTableStatements returns the DDL to create Seed and Minted if
	// they do not already exist, using this dialect's type names.
	createTableStatements() []string
}
