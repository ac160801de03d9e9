// Package clock wraps github.com/benbjohnson/clock so the engine receives
// "now" as an injected dependency instead of calling time.Now() directly.
// Production wiring uses Real; tests use a mock clock pinned to an exact
// instant, matching the engine's requirement that timestamps be
// reproducible in test scenarios.
package clock

import "github.com/benbjohnson/clock"

// Clock is benbjohnson/clock.Clock, re-exported; the engine only calls Now.
type Clock = clock.Clock

// Mock is a controllable clock for tests; see [clock.Mock].
type Mock = clock.Mock

// New returns the real wall clock.
func New() Clock {
	return clock.New()
}

// NewMock returns a mock clock pinned to the Unix epoch. Tests should call
// Set or Add to move it to a deterministic instant before asserting on
// recorded timestamps.
func NewMock() *Mock {
	return clock.NewMock()
}
