// Package library indexes a directory of recording files.
//
// A Library scans a directory for *.json recordings, keeps lightweight
// metadata (event count, duration) for each, and uses fsnotify to keep
// the index fresh as files are added, rewritten, or removed, so the CLI
// can list and look up recordings without rescanning on every call.
package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mimic/pkg/events"
)

// Entry is one indexed recording file.
type Entry struct {
	// Name is the file name without the .json extension.
	Name string

	Path       string
	ModTime    time.Time
	EventCount int
	Duration   time.Duration

	// Err is set when the file exists but cannot be parsed; the entry
	// stays in the index so the problem is visible in listings.
	Err error
}

// Library is a watched index of a recordings directory.
type Library struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]Entry

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// Open scans dir (creating it if absent) and starts watching it.
func Open(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	l := &Library{
		dir:     dir,
		logger:  logger,
		entries: make(map[string]Entry),
		watcher: watcher,
		done:    make(chan struct{}),
	}
	if err := l.rescan(); err != nil {
		watcher.Close()
		return nil, err
	}

	l.wg.Add(1)
	go l.watchLoop()
	return l, nil
}

// Close stops the watcher.
func (l *Library) Close() error {
	close(l.done)
	err := l.watcher.Close()
	l.wg.Wait()
	return err
}

// Dir returns the watched directory.
func (l *Library) Dir() string {
	return l.dir
}

// List returns all indexed entries sorted by name.
func (l *Library) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the entry for name, if indexed.
func (l *Library) Get(name string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[name]
	return e, ok
}

// Load parses the recording stored under name.
func (l *Library) Load(name string) (*events.Sequence, error) {
	l.mu.RLock()
	e, ok := l.entries[name]
	l.mu.RUnlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return events.Load(e.Path)
}

func (l *Library) watchLoop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !isRecordingPath(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0:
				l.index(ev.Name)
			case ev.Op&fsnotify.Remove != 0:
				l.drop(ev.Name)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("library watcher error", "error", err)
		}
	}
}

func isRecordingPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func entryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (l *Library) rescan() error {
	matches, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		l.index(path)
	}
	return nil
}

// index parses path and records its metadata. Rename events can fire for
// paths that no longer exist; those are dropped instead.
func (l *Library) index(path string) {
	info, err := os.Stat(path)
	if err != nil {
		l.drop(path)
		return
	}

	entry := Entry{
		Name:    entryName(path),
		Path:    path,
		ModTime: info.ModTime(),
	}
	if seq, err := events.Load(path); err != nil {
		entry.Err = err
		l.logger.Warn("unparseable recording in library", "path", path, "error", err)
	} else {
		entry.EventCount = seq.Len()
		entry.Duration = seq.Duration()
	}

	l.mu.Lock()
	l.entries[entry.Name] = entry
	l.mu.Unlock()
}

func (l *Library) drop(path string) {
	l.mu.Lock()
	delete(l.entries, entryName(path))
	l.mu.Unlock()
}
