// Package player replays an event sequence through an injector with
// timing fidelity.
//
// The player is stateless over the data: it walks the sequence in order,
// waits out each event's offset (scaled by the configured speed), and
// dispatches the action to the injection backend. Waits are the only
// suspension points and are interruptible through the context; cancelling
// mid-replay stops further dispatch but cannot undo input already
// injected. Per-event dispatch failures are handled by a configurable
// policy, because a partial best-effort replay is sometimes preferable to
// a hard stop.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mimic/internal/clock"
	"mimic/pkg/events"
	"mimic/pkg/inject"
)

// Policy selects how a per-event dispatch failure is handled.
type Policy string

const (
	// PolicyAbort stops replay and fails with *AbortedError.
	PolicyAbort Policy = "abort"
	// PolicySkip logs the failure and continues with the next event.
	PolicySkip Policy = "skip"
	// PolicyRetry re-attempts dispatch up to MaxRetries times, then
	// falls back to skip semantics.
	PolicyRetry Policy = "retry"
)

// Valid reports whether p is a recognized policy.
func (p Policy) Valid() bool {
	return p == PolicyAbort || p == PolicySkip || p == PolicyRetry
}

// Config controls a replay run.
type Config struct {
	// Speed scales all offsets; 2.0 replays twice as fast. Zero means
	// the default of 1.0; negative values are rejected.
	Speed float64

	// Start and End bound a partial replay to [Start, End). End zero
	// means the end of the sequence. Offsets are rebased to the first
	// replayed event, so a window from the middle starts immediately.
	Start int
	End   int

	// OnError is the per-event failure policy. Empty means abort.
	OnError Policy

	// MaxRetries bounds re-attempts under PolicyRetry. Zero means 3.
	MaxRetries int

	// Clock abstracts timing waits; nil means the system clock.
	Clock clock.Clock

	// Logger receives skip/retry diagnostics; nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a real-time, abort-on-error configuration.
func DefaultConfig() Config {
	return Config{Speed: 1.0, OnError: PolicyAbort, MaxRetries: 3}
}

// AbortedError reports a replay stopped early under PolicyAbort. Index is
// the failed event's position in the sequence.
type AbortedError struct {
	Index int
	Kind  events.Kind
	Err   error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("player: replay aborted at event %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *AbortedError) Unwrap() error { return e.Err }

// Replay dispatches seq's events to injector in order, honoring each
// event's relative timing. It returns once every event in the configured
// window has been dispatched, or earlier on cancellation or an aborting
// dispatch failure. Replaying an empty sequence (or an empty window) is a
// no-op.
func Replay(ctx context.Context, seq *events.Sequence, injector inject.Injector, cfg Config) error {
	speed := cfg.Speed
	if speed == 0 {
		speed = 1.0
	}
	if speed < 0 {
		return fmt.Errorf("player: speed factor must be positive, got %v", cfg.Speed)
	}
	policy := cfg.OnError
	if policy == "" {
		policy = PolicyAbort
	}
	if !policy.Valid() {
		return fmt.Errorf("player: unrecognized on-error policy %q", cfg.OnError)
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	evs := seq.Events()
	start, end, err := window(cfg, len(evs))
	if err != nil {
		return err
	}
	if start >= end {
		return nil
	}

	replayStart := clk.Now()
	base := evs[start].Offset()

	for i := start; i < end; i++ {
		e := evs[i]

		// Never sleep backward: an overdue event dispatches
		// immediately, preserving order but collapsing backlog.
		target := time.Duration(float64(e.Offset()-base) / speed)
		if wait := target - clk.Now().Sub(replayStart); wait > 0 {
			if err := clk.Sleep(ctx, wait); err != nil {
				return fmt.Errorf("player: replay cancelled before event %d: %w", i, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("player: replay cancelled before event %d: %w", i, err)
		}

		if err := dispatch(injector, e); err != nil {
			switch policy {
			case PolicyAbort:
				return &AbortedError{Index: i, Kind: e.Kind(), Err: err}
			case PolicySkip:
				logger.Warn("skipping failed event", "index", i, "event", e, "error", err)
			case PolicyRetry:
				if rerr := redispatch(injector, e, retries); rerr != nil {
					logger.Warn("skipping event after retries",
						"index", i, "event", e, "retries", retries, "error", rerr)
				}
			}
		}
	}
	return nil
}

func window(cfg Config, n int) (int, int, error) {
	start, end := cfg.Start, cfg.End
	if end == 0 {
		end = n
	}
	if start < 0 || start > n {
		return 0, 0, fmt.Errorf("player: start index %d out of range [0,%d]", start, n)
	}
	if end < start || end > n {
		return 0, 0, fmt.Errorf("player: end index %d out of range [%d,%d]", end, start, n)
	}
	return start, end, nil
}

func redispatch(injector inject.Injector, e events.Event, retries int) error {
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		if err = dispatch(injector, e); err == nil {
			return nil
		}
	}
	return err
}

func dispatch(injector inject.Injector, e events.Event) error {
	switch e.Kind() {
	case events.KindMouseMove:
		m, _ := e.Mouse()
		return injector.MoveMouse(m.X, m.Y)
	case events.KindMousePress:
		m, _ := e.Mouse()
		return injector.PressButton(m.Button, m.X, m.Y)
	case events.KindMouseRelease:
		m, _ := e.Mouse()
		return injector.ReleaseButton(m.Button, m.X, m.Y)
	case events.KindMouseScroll:
		m, _ := e.Mouse()
		return injector.Scroll(m.DX, m.DY, m.X, m.Y)
	case events.KindKeyPress:
		k, _ := e.Key()
		return injector.PressKey(k.Key)
	case events.KindKeyRelease:
		k, _ := e.Key()
		return injector.ReleaseKey(k.Key)
	}
	return errors.New("player: unrecognized event kind")
}
