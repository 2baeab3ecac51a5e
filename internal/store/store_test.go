package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mimic/pkg/events"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog", "mimic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSequence(t *testing.T) *events.Sequence {
	t.Helper()
	seq := events.NewSequence()
	e, err := events.NewMouseMove(0, 100, 200)
	require.NoError(t, err)
	require.NoError(t, seq.Append(e))
	e, err = events.NewKeyPress(500*time.Millisecond, "a")
	require.NoError(t, err)
	require.NoError(t, seq.Append(e))
	return seq
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	seq := sampleSequence(t)

	rec, err := s.Save("demo", seq)
	require.NoError(t, err)
	assert.Equal(t, "demo", rec.Name)
	assert.Equal(t, 2, rec.EventCount)
	assert.Equal(t, 500*time.Millisecond, rec.Duration)
	assert.NotEmpty(t, rec.Checksum)

	got, meta, err := s.Get("demo")
	require.NoError(t, err)
	assert.True(t, seq.Equal(got))
	assert.Equal(t, rec.Checksum, meta.Checksum)
	assert.Equal(t, 2, meta.EventCount)
}

func TestSaveReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Save("demo", sampleSequence(t))
	require.NoError(t, err)

	longer := sampleSequence(t)
	e, err := events.NewKeyRelease(time.Second, "a")
	require.NoError(t, err)
	require.NoError(t, longer.Append(e))
	_, err = s.Save("demo", longer)
	require.NoError(t, err)

	got, meta, err := s.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, 3, meta.EventCount)
	assert.True(t, longer.Equal(got))

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Save("", sampleSequence(t))
	require.Error(t, err)
}

func TestGetUnknownName(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetDetectsCorruption(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Save("demo", sampleSequence(t))
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE recordings SET body = ? WHERE name = ?`, []byte("[]"), "demo")
	require.NoError(t, err)

	_, _, err = s.Get("demo")
	require.ErrorIs(t, err, ErrChecksum)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"first", "second", "third"} {
		_, err := s.Save(name, sampleSequence(t))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "first", list[2].Name)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Save("demo", sampleSequence(t))
	require.NoError(t, err)

	require.NoError(t, s.Delete("demo"))
	_, _, err = s.Get("demo")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete("demo"), ErrNotFound)
}
