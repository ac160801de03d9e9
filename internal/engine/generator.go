package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dans-labs/pidgen/internal/clock"
	"github.com/dans-labs/pidgen/internal/encode"
	"github.com/dans-labs/pidgen/internal/kind"
	"github.com/dans-labs/pidgen/internal/logging"
	"github.com/dans-labs/pidgen/internal/store"
)

// Pid is one minted identifier, returned from a successful Generate call.
type Pid struct {
	Kind       kind.Kind
	Identifier string
	Seed       uint64 // the seed the identifier was derived from
	CreatedAt  time.Time
}

// Generator orchestrates one mint: read seed, compute identifier, check
// non-duplicate, advance seed, record identifier, all inside one Store
// transaction. It holds no mutable state of its own - every read and
// write goes through the Store, which is where the concurrency guarantee
// actually lives (see internal/store).
type Generator struct {
	store   *store.Store
	encoder *encode.Encoder
	clock   clock.Clock
	logger  *logging.Logger
}

// New builds a Generator. logger may be nil, in which case the generator
// does not log.
func New(s *store.Store, enc *encode.Encoder, clk clock.Clock, logger *logging.Logger) *Generator {
	if clk == nil {
		clk = clock.New()
	}

	return &Generator{store: s, encoder: enc, clock: clk, logger: logger}
}

func (g *Generator) logf(msg string, keyvals ...any) {
	if g.logger == nil {
		return
	}

	g.logger.Info(msg, keyvals...)
}

// Initialize installs the starting seed for k. It is idempotent only in
// the sense that calling it once succeeds; a second call for the same kind
// returns *AlreadyInitializedError carrying the seed that is already
// persisted, and leaves that seed untouched. The existing seed is read
// before inserting, rather than inserting and recovering from a unique
// violation, because Postgres aborts the whole transaction after one
// failed statement.
func (g *Generator) Initialize(ctx context.Context, k kind.Kind, seed uint64) error {
	if !k.Valid() {
		return fmt.Errorf("engine: initialize: unknown kind %q", k)
	}

	err := g.store.WithTransaction(ctx, func(ctx context.Context, tx *store.Tx) error {
		existing, ok, err := tx.GetSeed(ctx, k)
		if err != nil {
			return err
		}

		if ok {
			return &AlreadyInitializedError{Kind: k, ExistingSeed: existing}
		}

		return tx.InitSeed(ctx, k, seed)
	})
	if err != nil {
		return classify(err)
	}

	g.logf("seed initialized", "kind", k, "seed", seed)

	return nil
}

// Generate performs one mint for kind k: read the current seed, derive its
// identifier, advance the seed, and persist both the new Minted row and
// the advanced seed - atomically. On success the persisted seed is
// Encoder.Advance(k, usedSeed) and exactly one Minted row exists for the
// returned identifier.
//
// Returns *NotInitializedError if k has no seed yet, or
// *DuplicatePidError if the computed identifier is already minted (in
// which case the seed is left unchanged - see DuplicatePidError).
func (g *Generator) Generate(ctx context.Context, k kind.Kind) (*Pid, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("engine: generate: unknown kind %q", k)
	}

	var minted *Pid

	err := g.store.WithTransaction(ctx, func(ctx context.Context, tx *store.Tx) error {
		seed, ok, err := tx.GetSeed(ctx, k)
		if err != nil {
			return err
		}

		if !ok {
			return &NotInitializedError{Kind: k}
		}

		identifier := g.encoder.Encode(k, seed)
		nextSeed := g.encoder.Advance(k, seed)

		taken, createdAt, err := tx.HasPid(ctx, k, identifier)
		if err != nil {
			return err
		}

		if taken {
			return &DuplicatePidError{
				Kind:       k,
				UsedSeed:   seed,
				NextSeed:   nextSeed,
				Identifier: identifier,
				CreatedAt:  createdAt,
			}
		}

		now := g.clock.Now()

		if err := tx.AddPid(ctx, k, identifier, now); err != nil {
			return err
		}

		if err := tx.SetSeed(ctx, k, nextSeed); err != nil {
			return err
		}

		minted = &Pid{Kind: k, Identifier: identifier, Seed: seed, CreatedAt: now}

		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	g.logf("minted identifier", "kind", k, "identifier", minted.Identifier, "seed", minted.Seed)

	return minted, nil
}

// Exists reports whether identifier has already been minted for kind k. It
// is a thin, transactional pass-through to the Store.
func (g *Generator) Exists(ctx context.Context, k kind.Kind, identifier string) (bool, error) {
	if !k.Valid() {
		return false, fmt.Errorf("engine: exists: unknown kind %q", k)
	}

	var found bool

	err := g.store.WithTransaction(ctx, func(ctx context.Context, tx *store.Tx) error {
		exists, _, err := tx.HasPid(ctx, k, identifier)
		if err != nil {
			return err
		}

		found = exists

		return nil
	})
	if err != nil {
		return false, classify(err)
	}

	return found, nil
}
