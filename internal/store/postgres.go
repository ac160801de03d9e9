package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/dans-labs/pidgen/internal/kind"
)

// postgresDialect is the default, recommended backend: native SERIALIZABLE
// isolation makes the getSeed -> setSeed read-modify-write conflict-
// serializable without any explicit row locking, though the SELECT below
// still takes FOR UPDATE so readers queue behind an in-flight mint rather
// than relying solely on commit-time conflict detection.
type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) beginTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	return db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (postgresDialect) selectSeedForUpdate(k kind.Kind) (string, []any) {
	return `SELECT value FROM seed WHERE type = $1 FOR UPDATE`, []any{string(k)}
}

func (postgresDialect) insertSeed(k kind.Kind, v uint64) (string, []any) {
	return `INSERT INTO seed (type, value) VALUES ($1, $2)`, []any{string(k), int64(v)}
}

func (postgresDialect) updateSeed(k kind.Kind, v uint64) (string, []any) {
	return `UPDATE seed SET value = $2 WHERE type = $1`, []any{string(k), int64(v)}
}

func (postgresDialect) selectPid(k kind.Kind, id string) (string, []any) {
	return `SELECT created FROM minted WHERE type = $1 AND identifier = $2`, []any{string(k), id}
}

func (postgresDialect) insertPid(k kind.Kind, id string, created time.Time) (string, []any) {
	return `INSERT INTO minted (type, identifier, created) VALUES ($1, $2, $3)`, []any{string(k), id, created}
}

func (postgresDialect) isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	if errors.As(err, &pqErr) {
		// 23505 = unique_violation in PostgreSQL's error code catalog.
		return pqErr.Code == "23505"
	}

	return false
}

func (postgresDialect) createTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS seed (
			type  VARCHAR(64) PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS minted (
			type       VARCHAR(64) NOT NULL REFERENCES seed(type),
			identifier VARCHAR(64) NOT NULL,
			created    TIMESTAMP WITH TIME ZONE NOT NULL,
			PRIMARY KEY (type, identifier)
		)`,
	}
}

// postgresBuildDSN assembles a libpq connection string from discrete
// connection fields, mirroring how the rest of the ecosystem's sqldef-style
// adapters build a DSN from config rather than asking operators to hand-
// assemble one.
func postgresBuildDSN(url, user, password string) string {
	if url != "" {
		return url
	}

	return fmt.Sprintf("user=%s password=%s sslmode=disable", user, password)
}
