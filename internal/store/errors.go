package store

import (
	"errors"
	"fmt"

	"github.com/dans-labs/pidgen/internal/kind"
)

// ErrAlreadyInitialized reports that InitSeed was called for a kind that
// already has a Seed row. Callers should use errors.Is(err,
// ErrAlreadyInitialized).
var ErrAlreadyInitialized = errors.New("store: seed already initialized")

// ErrDuplicateIdentifier reports that AddPid was called for an
// (kind, identifier) pair already present in Minted. Callers should use
// errors.Is(err, ErrDuplicateIdentifier).
var ErrDuplicateIdentifier = errors.New("store: identifier already minted")

// QueryError wraps a backend failure with the operation and kind that
// triggered it, so callers can log actionable context without the engine
// needing to know anything about the SQL driver in use.
type QueryError struct {
	Op   string
	Kind kind.Kind
	Err  error
}

func (e *QueryError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("store: %s(%s): %v", e.Op, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func queryErr(op string, k kind.Kind, err error) error {
	if err == nil {
		return nil
	}

	return &QueryError{Op: op, Kind: k, Err: err}
}
