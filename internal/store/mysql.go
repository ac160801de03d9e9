package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/dans-labs/pidgen/internal/kind"
)

// mysqlDialect targets MySQL/MariaDB via go-sql-driver/mysql. InnoDB takes
// the row lock requested by SELECT ... FOR UPDATE, and SERIALIZABLE
// isolation is requested explicitly since MySQL defaults to REPEATABLE READ.
type mysqlDialect struct{}

func (mysqlDialect) name() string { return "mysql" }

func (mysqlDialect) beginTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	return db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (mysqlDialect) selectSeedForUpdate(k kind.Kind) (string, []any) {
	return `SELECT value FROM seed WHERE type = ? FOR UPDATE`, []any{string(k)}
}

func (mysqlDialect) insertSeed(k kind.Kind, v uint64) (string, []any) {
	return `INSERT INTO seed (type, value) VALUES (?, ?)`, []any{string(k), int64(v)}
}

func (mysqlDialect) updateSeed(k kind.Kind, v uint64) (string, []any) {
	return `UPDATE seed SET value = ? WHERE type = ?`, []any{int64(v), string(k)}
}

func (mysqlDialect) selectPid(k kind.Kind, id string) (string, []any) {
	return `SELECT created FROM minted WHERE type = ? AND identifier = ?`, []any{string(k), id}
}

func (mysqlDialect) insertPid(k kind.Kind, id string, created time.Time) (string, []any) {
	return `INSERT INTO minted (type, identifier, created) VALUES (?, ?, ?)`, []any{string(k), id, created}
}

func (mysqlDialect) isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError

	if errors.As(err, &mysqlErr) {
		// 1062 = ER_DUP_ENTRY.
		return mysqlErr.Number == 1062
	}

	return false
}

func (mysqlDialect) createTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS seed (
			type  VARCHAR(64) NOT NULL PRIMARY KEY,
			value BIGINT NOT NULL
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS minted (
			type       VARCHAR(64) NOT NULL,
			identifier VARCHAR(64) NOT NULL,
			created    TIMESTAMP(6) NOT NULL,
			PRIMARY KEY (type, identifier),
			FOREIGN KEY (type) REFERENCES seed(type)
		) ENGINE=InnoDB`,
	}
}
