package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dans-labs/pidgen/internal/config"
	"github.com/dans-labs/pidgen/internal/kind"
	"github.com/dans-labs/pidgen/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "pidgen.sqlite")

	s, err := store.Open(t.Context(), config.Database{
		Driver: "sqlite3",
		URL:    dbPath,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func Test_InitSeed_Then_GetSeed_Roundtrips(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	err := s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		return tx.InitSeed(ctx, kind.DOI, 1073741824)
	})
	if err != nil {
		t.Fatalf("init seed: %v", err)
	}

	var got uint64

	err = s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		v, ok, err := tx.GetSeed(ctx, kind.DOI)
		if err != nil {
			return err
		}

		if !ok {
			t.Fatal("expected seed to be initialized")
		}

		got = v

		return nil
	})
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}

	if got != 1073741824 {
		t.Fatalf("GetSeed = %d, want 1073741824", got)
	}
}

func Test_GetSeed_Uninitialized_Kind_Returns_NotOk(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	err := s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		_, ok, err := tx.GetSeed(ctx, kind.URN)
		if err != nil {
			return err
		}

		if ok {
			t.Fatal("expected ok=false for an uninitialized kind")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_InitSeed_Twice_Returns_AlreadyInitialized(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	init := func() error {
		return s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
			return tx.InitSeed(ctx, kind.DOI, 1073741824)
		})
	}

	if err := init(); err != nil {
		t.Fatalf("first init: %v", err)
	}

	err := init()
	require.ErrorIs(t, err, store.ErrAlreadyInitialized)
}

func Test_AddPid_Duplicate_Returns_DuplicateIdentifier(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	err := s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		return tx.InitSeed(ctx, kind.DOI, 1)
	})
	if err != nil {
		t.Fatalf("init seed: %v", err)
	}

	add := func() error {
		return s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
			return tx.AddPid(ctx, kind.DOI, "10.5072/dans-aaa-bbbb", time.Now().UTC())
		})
	}

	if err := add(); err != nil {
		t.Fatalf("first add: %v", err)
	}

	err = add()
	require.ErrorIs(t, err, store.ErrDuplicateIdentifier)
}

func Test_HasPid_Reports_Existing_CreatedAt(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	createdAt := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

	err := s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		if err := tx.InitSeed(ctx, kind.DOI, 1); err != nil {
			return err
		}

		return tx.AddPid(ctx, kind.DOI, "10.5072/dans-aaa-bbbb", createdAt)
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		exists, created, err := tx.HasPid(ctx, kind.DOI, "10.5072/dans-aaa-bbbb")
		if err != nil {
			return err
		}

		if !exists {
			t.Fatal("expected identifier to exist")
		}

		if !created.Equal(createdAt) {
			t.Fatalf("created = %v, want %v", created, createdAt)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
}

func Test_WithTransaction_RollsBackOnError(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	sentinel := errors.New("boom")

	err := s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		if err := tx.InitSeed(ctx, kind.DOI, 1); err != nil {
			return err
		}

		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want sentinel", err)
	}

	err = s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
		_, ok, err := tx.GetSeed(ctx, kind.DOI)
		if err != nil {
			return err
		}

		if ok {
			t.Fatal("expected rollback to discard the InitSeed")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("check after rollback: %v", err)
	}
}

// Test_Concurrent_InitSeed_OnlyOneWins exercises the row-lock/unique-
// constraint discipline under concurrent writers racing to initialize the
// same kind: exactly one must succeed.
func Test_Concurrent_InitSeed_OnlyOneWins(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	const n = 10

	var wg sync.WaitGroup

	successes := make([]bool, n)

	for i := range n {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			err := s.WithTransaction(t.Context(), func(ctx context.Context, tx *store.Tx) error {
				return tx.InitSeed(ctx, kind.DOI, uint64(i))
			})
			successes[i] = err == nil
		}(i)
	}

	wg.Wait()

	wins := 0

	for _, ok := range successes {
		if ok {
			wins++
		}
	}

	if wins != 1 {
		t.Fatalf("got %d successful InitSeed calls among %d racers, want exactly 1", wins, n)
	}
}
