// Package store implements the transactional persistence facade the
// generator drives: the current seed per kind, and the set of identifiers
// ever minted. It is a thin wrapper over database/sql - no ORM, no query
// builder - because the schema is exactly two tables and the only hard
// requirement is the isolation discipline around one read-modify-write.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // sqlserver driver
	_ "github.com/go-sql-driver/mysql"   // mysql driver
	_ "github.com/lib/pq"                // postgres driver
	_ "github.com/mattn/go-sqlite3"      // sqlite3 driver

	"github.com/dans-labs/pidgen/internal/config"
	"github.com/dans-labs/pidgen/internal/kind"
)

// Store wires a *sql.DB to the dialect matching its driver. The zero value
// is not usable; construct one with Open.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the backend named by cfg.Driver and ensures the Seed and
// Minted tables exist. Recognized drivers: "postgres" (default/recommended),
// "mysql", "sqlserver", "sqlite3".
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	driverName, dsn, d, err := resolveDialect(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", d.name(), err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("store: ping %s: %w", d.name(), err)
	}

	s := &Store{db: db, dialect: d}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// resolveDialect maps a driver name from config to a (driver, DSN, dialect)
// triple. Unknown driver names are a configuration error, not a StorageError
// - they are caught before any connection attempt.
func resolveDialect(cfg config.Database) (driverName, dsn string, d dialect, err error) {
	switch cfg.Driver {
	case "postgres", "":
		return "postgres", postgresBuildDSN(cfg.URL, cfg.User, cfg.Password), postgresDialect{}, nil
	case "mysql":
		return "mysql", cfg.URL, mysqlDialect{}, nil
	case "sqlserver", "mssql":
		return "sqlserver", cfg.URL, mssqlDialect{}, nil
	case "sqlite3", "sqlite":
		// _txlock=immediate makes BeginTx acquire a RESERVED lock at the
		// start of every transaction, serializing writers the way a row
		// lock does on the backends that have one.
		return "sqlite3", cfg.URL + "?_txlock=immediate&_busy_timeout=10000", sqliteDialect{}, nil
	default:
		return "", "", nil, fmt.Errorf("store: unknown database driver %q", cfg.Driver)
	}
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.createTableStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}

	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a handle to a single database transaction, scoped to one call into
// WithTransaction. Every method on Tx reads or writes through the same
// underlying *sql.Tx, so all operations performed on it commit or roll
// back together.
type Tx struct {
	sqlTx   *sql.Tx
	dialect dialect
}

// WithTransaction runs fn inside a single backend transaction at the
// isolation level (or lock discipline) the dialect requires for conflict-
// serializable read-modify-write. If fn returns an error, the transaction
// is rolled back and the error is returned unchanged (or, if the rollback
// itself fails, wrapped together with the rollback error); otherwise the
// transaction is committed.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	sqlTx, err := s.dialect.beginTx(ctx, s.db)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	tx := &Tx{sqlTx: sqlTx, dialect: s.dialect}

	if err := fn(ctx, tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("store: rollback after %w: %v", err, rbErr)
		}

		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	return nil
}

// GetSeed returns the current seed for k and true, or false if k has never
// been initialized.
func (tx *Tx) GetSeed(ctx context.Context, k kind.Kind) (uint64, bool, error) {
	query, args := tx.dialect.selectSeedForUpdate(k)

	var value int64

	err := tx.sqlTx.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, queryErr("get_seed", k, err)
	}

	return uint64(value), true, nil
}

// InitSeed inserts the Seed row for k. It returns ErrAlreadyInitialized
// (wrapped, checkable via errors.Is) if a row for k already exists.
func (tx *Tx) InitSeed(ctx context.Context, k kind.Kind, v uint64) error {
	query, args := tx.dialect.insertSeed(k, v)

	_, err := tx.sqlTx.ExecContext(ctx, query, args...)
	if err == nil {
		return nil
	}

	if tx.dialect.isUniqueViolation(err) {
		return fmt.Errorf("%w: kind %s", ErrAlreadyInitialized, k)
	}

	return queryErr("init_seed", k, err)
}

// SetSeed updates the Seed row for k to v. The row must already exist;
// SetSeed is only ever called after a successful GetSeed in the same
// transaction.
func (tx *Tx) SetSeed(ctx context.Context, k kind.Kind, v uint64) error {
	query, args := tx.dialect.updateSeed(k, v)

	result, err := tx.sqlTx.ExecContext(ctx, query, args...)
	if err != nil {
		return queryErr("set_seed", k, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return queryErr("set_seed", k, err)
	}

	if affected == 0 {
		return queryErr("set_seed", k, fmt.Errorf("no seed row for kind %s", k))
	}

	return nil
}

// HasPid reports whether (k, identifier) has already been minted, and if
// so, the timestamp it was recorded at.
func (tx *Tx) HasPid(ctx context.Context, k kind.Kind, identifier string) (bool, time.Time, error) {
	query, args := tx.dialect.selectPid(k, identifier)

	var created time.Time

	err := tx.sqlTx.QueryRowContext(ctx, query, args...).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return false, time.Time{}, nil
	}

	if err != nil {
		return false, time.Time{}, queryErr("has_pid", k, err)
	}

	return true, created, nil
}

// AddPid inserts a Minted row for (k, identifier) at createdAt. It returns
// ErrDuplicateIdentifier (wrapped, checkable via errors.Is) if the row
// already exists.
func (tx *Tx) AddPid(ctx context.Context, k kind.Kind, identifier string, createdAt time.Time) error {
	query, args := tx.dialect.insertPid(k, identifier, createdAt)

	_, err := tx.sqlTx.ExecContext(ctx, query, args...)
	if err == nil {
		return nil
	}

	if tx.dialect.isUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateIdentifier, k, identifier)
	}

	return queryErr("add_pid", k, err)
}
