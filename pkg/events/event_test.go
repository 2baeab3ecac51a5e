package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventConstructors(t *testing.T) {
	t.Run("mouse move", func(t *testing.T) {
		e, err := NewMouseMove(100*time.Millisecond, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, KindMouseMove, e.Kind())
		assert.Equal(t, 100*time.Millisecond, e.Offset())

		m, ok := e.Mouse()
		require.True(t, ok)
		assert.Equal(t, 10, m.X)
		assert.Equal(t, 20, m.Y)

		_, ok = e.Key()
		assert.False(t, ok)
	})

	t.Run("mouse press", func(t *testing.T) {
		e, err := NewMousePress(0, ButtonLeft, 5, 6)
		require.NoError(t, err)
		m, ok := e.Mouse()
		require.True(t, ok)
		assert.Equal(t, ButtonLeft, m.Button)
	})

	t.Run("scroll", func(t *testing.T) {
		e, err := NewMouseScroll(time.Second, 1, 2, -3, 4)
		require.NoError(t, err)
		m, _ := e.Mouse()
		assert.Equal(t, -3, m.DX)
		assert.Equal(t, 4, m.DY)
	})

	t.Run("key press", func(t *testing.T) {
		e, err := NewKeyPress(time.Second, "shift")
		require.NoError(t, err)
		assert.Equal(t, KindKeyPress, e.Kind())
		k, ok := e.Key()
		require.True(t, ok)
		assert.Equal(t, "shift", k.Key)

		_, ok = e.Mouse()
		assert.False(t, ok)
	})
}

func TestEventConstructorValidation(t *testing.T) {
	tests := []struct {
		name string
		make func() (Event, error)
	}{
		{"negative offset", func() (Event, error) { return NewMouseMove(-time.Second, 0, 0) }},
		{"unknown button", func() (Event, error) { return NewMousePress(0, Button("side"), 0, 0) }},
		{"empty key", func() (Event, error) { return NewKeyPress(0, "") }},
		{"empty key on release", func() (Event, error) { return NewKeyRelease(time.Second, "") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.make()
			var ieErr *InvalidEventError
			require.ErrorAs(t, err, &ieErr)
		})
	}
}

func TestEventEquality(t *testing.T) {
	a, err := NewKeyPress(time.Second, "a")
	require.NoError(t, err)
	b, err := NewKeyPress(time.Second, "a")
	require.NoError(t, err)
	c, err := NewKeyPress(time.Second, "b")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindMouseScroll.IsMouse())
	assert.False(t, KindMouseScroll.IsKey())
	assert.True(t, KindKeyRelease.IsKey())
	assert.False(t, KindKeyRelease.IsMouse())
	assert.False(t, Kind("snapshot").Valid())
}
