// Package store persists named recordings in a SQLite catalog.
//
// The catalog keeps the serialized event log alongside metadata (event
// count, duration, a BLAKE2b content checksum) so recordings can be
// listed and integrity-checked without parsing every body.
package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"

	"mimic/pkg/events"
)

// Schema for the recording catalog.
const schema = `
CREATE TABLE IF NOT EXISTS recordings (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    created_at  INTEGER NOT NULL,
    event_count INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    checksum    TEXT NOT NULL,
    body        BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recordings_created ON recordings(created_at);
`

// ErrNotFound is returned when no recording has the requested name.
var ErrNotFound = errors.New("store: recording not found")

// ErrChecksum is returned when a stored body does not match its recorded
// checksum, indicating catalog corruption.
var ErrChecksum = errors.New("store: checksum mismatch")

// Recording is a catalog entry.
type Recording struct {
	ID         int64
	Name       string
	CreatedAt  time.Time
	EventCount int
	Duration   time.Duration
	Checksum   string
}

// Store is the SQLite recording catalog.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the catalog.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save serializes seq and stores it under name. An existing recording
// with the same name is replaced.
func (s *Store) Save(name string, seq *events.Sequence) (*Recording, error) {
	if name == "" {
		return nil, fmt.Errorf("store: recording name must not be empty")
	}
	body, err := seq.Marshal()
	if err != nil {
		return nil, fmt.Errorf("store: serialize recording: %w", err)
	}

	sum := blake2b.Sum256(body)
	rec := &Recording{
		Name:       name,
		CreatedAt:  time.Now(),
		EventCount: seq.Len(),
		Duration:   seq.Duration(),
		Checksum:   hex.EncodeToString(sum[:]),
	}

	res, err := s.db.Exec(`
		INSERT INTO recordings (name, created_at, event_count, duration_ns, checksum, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			created_at = excluded.created_at,
			event_count = excluded.event_count,
			duration_ns = excluded.duration_ns,
			checksum = excluded.checksum,
			body = excluded.body`,
		rec.Name, rec.CreatedAt.UnixNano(), rec.EventCount, int64(rec.Duration), rec.Checksum, body)
	if err != nil {
		return nil, fmt.Errorf("store: save recording %q: %w", name, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return rec, nil
}

// Get loads the recording stored under name, verifying its checksum.
func (s *Store) Get(name string) (*events.Sequence, *Recording, error) {
	row := s.db.QueryRow(`
		SELECT id, name, created_at, event_count, duration_ns, checksum, body
		FROM recordings WHERE name = ?`, name)

	var (
		rec       Recording
		createdNs int64
		durNs     int64
		body      []byte
	)
	err := row.Scan(&rec.ID, &rec.Name, &createdNs, &rec.EventCount, &durNs, &rec.Checksum, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: load recording %q: %w", name, err)
	}
	rec.CreatedAt = time.Unix(0, createdNs)
	rec.Duration = time.Duration(durNs)

	sum := blake2b.Sum256(body)
	if hex.EncodeToString(sum[:]) != rec.Checksum {
		return nil, nil, fmt.Errorf("%w: recording %q", ErrChecksum, name)
	}

	seq, err := events.Unmarshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("store: parse recording %q: %w", name, err)
	}
	return seq, &rec, nil
}

// List returns all catalog entries, newest first, without bodies.
func (s *Store) List() ([]Recording, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, event_count, duration_ns, checksum
		FROM recordings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list recordings: %w", err)
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		var (
			rec       Recording
			createdNs int64
			durNs     int64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &createdNs, &rec.EventCount, &durNs, &rec.Checksum); err != nil {
			return nil, fmt.Errorf("store: scan recording: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdNs)
		rec.Duration = time.Duration(durNs)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the recording stored under name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM recordings WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete recording %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}
