package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sys := NewSystem()
	start := time.Now()
	err := sys.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSystemSleepNonPositive(t *testing.T) {
	sys := NewSystem()
	require.NoError(t, sys.Sleep(context.Background(), 0))
	require.NoError(t, sys.Sleep(context.Background(), -time.Second))
}

func TestFakeSleepAdvancesAndRecords(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFake(start)
	assert.Equal(t, start, f.Now())

	require.NoError(t, f.Sleep(context.Background(), 250*time.Millisecond))
	require.NoError(t, f.Sleep(context.Background(), time.Second))
	// Non-positive sleeps are not recorded.
	require.NoError(t, f.Sleep(context.Background(), 0))

	assert.Equal(t, start.Add(1250*time.Millisecond), f.Now())
	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second}, f.Sleeps())
}

func TestFakeSleepChecksContext(t *testing.T) {
	f := NewFake(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, f.Sleep(ctx, time.Second), context.Canceled)
	assert.Empty(t, f.Sleeps())
}

func TestFakeAdvance(t *testing.T) {
	start := time.Now()
	f := NewFake(start)
	f.Advance(3 * time.Second)
	assert.Equal(t, start.Add(3*time.Second), f.Now())
	assert.Empty(t, f.Sleeps())
}
