//go:build integration

// Package integration exercises the full record, persist, and replay
// pipeline end to end against simulated capture and injection backends.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mimic/internal/clock"
	"mimic/internal/store"
	"mimic/pkg/capture"
	"mimic/pkg/events"
	"mimic/pkg/inject"
	"mimic/pkg/player"
	"mimic/pkg/recorder"
)

// TestRecordPersistReplay walks a recording through the whole pipeline:
// capture into a sequence, serialize, store in the catalog, load it back,
// and replay it with timing assertions.
func TestRecordPersistReplay(t *testing.T) {
	source := capture.NewSimulated()
	fake := clock.NewFake(source.Start())
	rec := recorder.New(source, recorder.WithClock(fake))

	require.NoError(t, rec.Record(context.Background()))
	source.EmitMouseMove(0, 100, 200)
	source.EmitAt(250*time.Millisecond, capture.Notification{
		Kind: events.KindMousePress, Button: events.ButtonLeft, X: 100, Y: 200,
	})
	source.EmitAt(300*time.Millisecond, capture.Notification{
		Kind: events.KindMouseRelease, Button: events.ButtonLeft, X: 100, Y: 200,
	})
	source.EmitKeyPress(500*time.Millisecond, "a")
	source.EmitAt(600*time.Millisecond, capture.Notification{
		Kind: events.KindKeyRelease, Key: "a",
	})

	seq, err := rec.Stop()
	require.NoError(t, err)
	require.Equal(t, 5, seq.Len())
	require.True(t, seq.Frozen())

	// Serialize, validate against the schema, and round-trip.
	data, err := seq.Marshal()
	require.NoError(t, err)
	require.NoError(t, events.ValidateLog(data))
	decoded, err := events.Unmarshal(data)
	require.NoError(t, err)
	require.True(t, seq.Equal(decoded))

	// Persist through the catalog and load back.
	catalog, err := store.Open(filepath.Join(t.TempDir(), "mimic.db"))
	require.NoError(t, err)
	defer catalog.Close()

	meta, err := catalog.Save("session", seq)
	require.NoError(t, err)
	assert.Equal(t, 5, meta.EventCount)
	assert.Equal(t, 600*time.Millisecond, meta.Duration)

	loaded, _, err := catalog.Get("session")
	require.NoError(t, err)
	require.True(t, seq.Equal(loaded))

	// Replay the loaded copy and check dispatch order and timing.
	sim := inject.NewSimulated()
	replayClock := clock.NewFake(time.Now())
	cfg := player.DefaultConfig()
	cfg.Clock = replayClock
	require.NoError(t, player.Replay(context.Background(), loaded, sim, cfg))

	calls := sim.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, inject.OpMoveMouse, calls[0].Op)
	assert.Equal(t, 100, calls[0].X)
	assert.Equal(t, 200, calls[0].Y)
	assert.Equal(t, inject.OpPressButton, calls[1].Op)
	assert.Equal(t, events.ButtonLeft, calls[1].Button)
	assert.Equal(t, inject.OpReleaseButton, calls[2].Op)
	assert.Equal(t, inject.OpPressKey, calls[3].Op)
	assert.Equal(t, "a", calls[3].Key)
	assert.Equal(t, inject.OpReleaseKey, calls[4].Op)

	assert.Equal(t, []time.Duration{
		250 * time.Millisecond,
		50 * time.Millisecond,
		200 * time.Millisecond,
		100 * time.Millisecond,
	}, replayClock.Sleeps())
}

// TestSimplifiedRecordingReplays records a noisy session, condenses it,
// and verifies the condensed form still replays cleanly.
func TestSimplifiedRecordingReplays(t *testing.T) {
	source := capture.NewSimulated()
	fake := clock.NewFake(source.Start())
	rec := recorder.New(source, recorder.WithClock(fake))

	require.NoError(t, rec.Record(context.Background()))
	for i := 1; i <= 5; i++ {
		source.EmitMouseMove(time.Duration(i)*50*time.Millisecond, i*10, i*10)
	}
	source.EmitKeyPress(time.Second, "enter")

	seq, err := rec.Stop()
	require.NoError(t, err)
	require.Equal(t, 6, seq.Len())

	simplified := events.Simplify(seq, events.DefaultSimplifyOptions())
	require.Equal(t, 2, simplified.Len())

	// The collapsed move keeps the final cursor position.
	m, ok := simplified.At(0).Mouse()
	require.True(t, ok)
	assert.Equal(t, 50, m.X)

	sim := inject.NewSimulated()
	cfg := player.DefaultConfig()
	cfg.Clock = clock.NewFake(time.Now())
	require.NoError(t, player.Replay(context.Background(), simplified, sim, cfg))

	calls := sim.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, inject.OpMoveMouse, calls[0].Op)
	assert.Equal(t, inject.OpPressKey, calls[1].Op)
}

// TestReplaySurvivesFlakyInjector replays a stored recording against an
// injector that fails transiently, using the retry policy.
func TestReplaySurvivesFlakyInjector(t *testing.T) {
	seq := events.NewSequence()
	e, err := events.NewMouseMove(0, 10, 10)
	require.NoError(t, err)
	require.NoError(t, seq.Append(e))
	e, err = events.NewKeyPress(100*time.Millisecond, "x")
	require.NoError(t, err)
	require.NoError(t, seq.Append(e))

	sim := inject.NewSimulated()
	failures := 2
	sim.FailOn = func(n int, c inject.Call) error {
		if c.Op == inject.OpPressKey && failures > 0 {
			failures--
			return assert.AnError
		}
		return nil
	}

	cfg := player.DefaultConfig()
	cfg.Clock = clock.NewFake(time.Now())
	cfg.OnError = player.PolicyRetry
	require.NoError(t, player.Replay(context.Background(), seq, sim, cfg))
	assert.Equal(t, 2, sim.Len())
	assert.Equal(t, 0, failures)
}
