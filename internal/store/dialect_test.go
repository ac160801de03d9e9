package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dans-labs/pidgen/internal/kind"
)

// dialectUnderTest pairs a dialect with a human label so the table below
// reads as one matrix across all four backends, without ever opening a
// connection.
var dialectUnderTest = []struct {
	label   string
	dialect dialect
}{
	{"postgres", postgresDialect{}},
	{"mysql", mysqlDialect{}},
	{"mssql", mssqlDialect{}},
	{"sqlite3", sqliteDialect{}},
}

// TestDialectArgsMatchPlaceholderCount guards the bug class the dialect
// interface exists to eliminate: every statement's arg slice must have as
// many entries as the query has placeholders, whether that's
// MySQL/SQLite/SQL Server's positional "?" or Postgres's numbered "$N". It
// checks each slice against the known placeholder count of its statement
// and that the kind, seed and timestamp values are among the arguments; it
// does not check their order.
func TestDialectArgsMatchPlaceholderCount(t *testing.T) {
	now := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

	for _, tc := range dialectUnderTest {
		t.Run(tc.label, func(t *testing.T) {
			_, selectArgs := tc.dialect.selectSeedForUpdate(kind.DOI)
			assert.Len(t, selectArgs, 1)
			assert.Equal(t, "DOI", selectArgs[0])

			_, insertSeedArgs := tc.dialect.insertSeed(kind.DOI, 42)
			assert.Len(t, insertSeedArgs, 2)
			assert.Contains(t, insertSeedArgs, "DOI")
			assert.Contains(t, insertSeedArgs, int64(42))

			updateQuery, updateArgs := tc.dialect.updateSeed(kind.DOI, 43)
			assert.Len(t, updateArgs, 2)
			assert.Contains(t, updateQuery, "UPDATE")

			_, selectPidArgs := tc.dialect.selectPid(kind.DOI, "10.5072/dans-aaa-bbbb")
			assert.Len(t, selectPidArgs, 2)

			_, insertPidArgs := tc.dialect.insertPid(kind.DOI, "10.5072/dans-aaa-bbbb", now)
			assert.Len(t, insertPidArgs, 3)
			assert.Contains(t, insertPidArgs, now)
		})
	}
}

// TestDialectCreateTableStatementsNonEmpty checks every dialect ships two
// non-empty DDL statements, one per table.
func TestDialectCreateTableStatementsNonEmpty(t *testing.T) {
	for _, tc := range dialectUnderTest {
		t.Run(tc.label, func(t *testing.T) {
			stmts := tc.dialect.createTableStatements()
			assert.Len(t, stmts, 2)

			for _, stmt := range stmts {
				assert.NotEmpty(t, stmt)
			}
		})
	}
}

// TestDialectNameIdentifiesBackend ensures name() never collides across
// dialects - it is used in error messages callers might match on.
func TestDialectNameIdentifiesBackend(t *testing.T) {
	seen := make(map[string]bool)

	for _, tc := range dialectUnderTest {
		name := tc.dialect.name()
		assert.False(t, seen[name], "duplicate dialect name %q", name)
		seen[name] = true
	}
}

// TestIsUniqueViolationRejectsUnrelatedErrors checks every dialect's
// violation detector returns false for an error it clearly cannot
// recognize, rather than panicking or false-positiving on type assertion.
func TestIsUniqueViolationRejectsUnrelatedErrors(t *testing.T) {
	for _, tc := range dialectUnderTest {
		t.Run(tc.label, func(t *testing.T) {
			assert.False(t, tc.dialect.isUniqueViolation(assert.AnError))
		})
	}
}
