// Package engine implements the Generator: the orchestration layer that
// turns one Store and one Encoder into the three public mint operations
// (Initialize, Generate, Exists), each atomic and each reporting failures
// through the taxonomy defined in this file.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dans-labs/pidgen/internal/kind"
)

// NotInitializedError reports that Generate was attempted for a kind with
// no Seed row. Match it with errors.As and a *NotInitializedError target,
// then check Kind.
type NotInitializedError struct {
	Kind kind.Kind
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("engine: kind %s is not initialized", e.Kind)
}

// AlreadyInitializedError reports that Initialize was called for a kind
// that already has a persisted seed. ExistingSeed is that persisted value;
// the call leaves it unchanged.
type AlreadyInitializedError struct {
	Kind         kind.Kind
	ExistingSeed uint64
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("engine: kind %s already initialized with seed %d", e.Kind, e.ExistingSeed)
}

// DuplicatePidError reports that the identifier computed from the current
// seed already exists in Minted. The seed is NOT advanced when this error
// is returned - the next Generate call derives the same identifier again
// and fails the same way. Initialize does not move an existing seed (see
// AlreadyInitializedError).
type DuplicatePidError struct {
	Kind       kind.Kind
	UsedSeed   uint64
	NextSeed   uint64
	Identifier string
	CreatedAt  time.Time
}

func (e *DuplicatePidError) Error() string {
	return fmt.Sprintf(
		"engine: identifier %q for kind %s already minted at %s (seed %d not advanced)",
		e.Identifier, e.Kind, e.CreatedAt.Format(time.RFC3339), e.UsedSeed,
	)
}

// StorageError wraps any backend failure not already classified into one
// of the taxonomy's named cases above - connection failures, serialization
// conflicts, constraint violations the engine did not anticipate. The
// engine never retries; callers should use errors.Is/errors.As to decide
// whether a retry makes sense.
type StorageError struct {
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("engine: storage error: %v", e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// classify maps an error surfaced from a Store transaction onto the
// engine's public taxonomy. Errors already in the taxonomy (constructed
// inside the transaction closure and propagated through rollback
// unchanged) pass through as-is; everything else is wrapped as a
// StorageError.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var notInitialized *NotInitializedError
	if errors.As(err, &notInitialized) {
		return err
	}

	var alreadyInitialized *AlreadyInitializedError
	if errors.As(err, &alreadyInitialized) {
		return err
	}

	var duplicate *DuplicatePidError
	if errors.As(err, &duplicate) {
		return err
	}

	return &StorageError{Cause: err}
}
