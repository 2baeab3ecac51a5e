package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mimic/pkg/events"
)

func writeRecording(t *testing.T, dir, name string) *events.Sequence {
	t.Helper()
	seq := events.NewSequence()
	e, err := events.NewMouseMove(0, 1, 2)
	require.NoError(t, err)
	require.NoError(t, seq.Append(e))
	e, err = events.NewKeyPress(time.Second, "a")
	require.NoError(t, err)
	require.NoError(t, seq.Append(e))
	require.NoError(t, seq.Save(filepath.Join(dir, name+".json")))
	return seq
}

func openTestLibrary(t *testing.T, dir string) *Library {
	t.Helper()
	l, err := Open(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenScansExistingFiles(t *testing.T) {
	dir := t.TempDir()
	seq := writeRecording(t, dir, "alpha")
	writeRecording(t, dir, "beta")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644))

	l := openTestLibrary(t, dir)

	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
	assert.Equal(t, 2, list[0].EventCount)
	assert.Equal(t, time.Second, list[0].Duration)

	got, err := l.Load("alpha")
	require.NoError(t, err)
	assert.True(t, seq.Equal(got))
}

func TestOpenCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recordings")
	l := openTestLibrary(t, dir)
	assert.Equal(t, dir, l.Dir())
	assert.Empty(t, l.List())
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	l := openTestLibrary(t, dir)

	writeRecording(t, dir, "fresh")
	require.Eventually(t, func() bool {
		_, ok := l.Get("fresh")
		return ok
	}, 3*time.Second, 10*time.Millisecond)

	e, _ := l.Get("fresh")
	assert.Equal(t, 2, e.EventCount)
}

func TestWatcherDropsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, "doomed")
	l := openTestLibrary(t, dir)
	_, ok := l.Get("doomed")
	require.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(dir, "doomed.json")))
	require.Eventually(t, func() bool {
		_, ok := l.Get("doomed")
		return !ok
	}, 3*time.Second, 10*time.Millisecond)
}

func TestUnparseableFileStaysListedWithError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("not json"), 0644))
	l := openTestLibrary(t, dir)

	e, ok := l.Get("broken")
	require.True(t, ok)
	require.Error(t, e.Err)

	_, err := l.Load("broken")
	require.Error(t, err)
}

func TestLoadUnknownName(t *testing.T) {
	l := openTestLibrary(t, t.TempDir())
	_, err := l.Load("missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}
