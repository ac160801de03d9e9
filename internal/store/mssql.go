package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	mssql "github.com/denisenkom/go-mssqldb"

	"github.com/dans-labs/pidgen/internal/kind"
)

// mssqlDialect targets SQL Server via denisenkom/go-mssqldb. SQL Server has
// no FOR UPDATE syntax; the equivalent row lock is requested with a table
// hint on the SELECT.
type mssqlDialect struct{}

func (mssqlDialect) name() string { return "sqlserver" }

func (mssqlDialect) beginTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	return db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (mssqlDialect) selectSeedForUpdate(k kind.Kind) (string, []any) {
	return `SELECT value FROM seed WITH (UPDLOCK, ROWLOCK) WHERE type = ?`, []any{string(k)}
}

func (mssqlDialect) insertSeed(k kind.Kind, v uint64) (string, []any) {
	return `INSERT INTO seed (type, value) VALUES (?, ?)`, []any{string(k), int64(v)}
}

func (mssqlDialect) updateSeed(k kind.Kind, v uint64) (string, []any) {
	return `UPDATE seed SET value = ? WHERE type = ?`, []any{int64(v), string(k)}
}

func (mssqlDialect) selectPid(k kind.Kind, id string) (string, []any) {
	return `SELECT created FROM minted WHERE type = ? AND identifier = ?`, []any{string(k), id}
}

func (mssqlDialect) insertPid(k kind.Kind, id string, created time.Time) (string, []any) {
	return `INSERT INTO minted (type, identifier, created) VALUES (?, ?, ?)`, []any{string(k), id, created}
}

func (mssqlDialect) isUniqueViolation(err error) bool {
	var mssqlErr mssql.Error

	if errors.As(err, &mssqlErr) {
		// 2627 = violation of PRIMARY KEY/UNIQUE constraint.
		return mssqlErr.Number == 2627
	}

	return false
}

func (mssqlDialect) createTableStatements() []string {
	return []string{
		`IF OBJECT_ID('seed', 'U') IS NULL
		CREATE TABLE seed (
			type  VARCHAR(64) NOT NULL PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
		`IF OBJECT_ID('minted', 'U') IS NULL
		CREATE TABLE minted (
			type       VARCHAR(64) NOT NULL,
			identifier VARCHAR(64) NOT NULL,
			created    DATETIMEOFFSET NOT NULL,
			PRIMARY KEY (type, identifier),
			FOREIGN KEY (type) REFERENCES seed(type)
		)`,
	}
}
