// Package state records what previous builds produced, so unchanged
// artifacts can be skipped. Records live in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// ErrStore indicates the state database could not be opened, read or
// written.
var ErrStore = errors.New("build state store error")

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    key          TEXT PRIMARY KEY,
    fingerprint  TEXT NOT NULL,
    hash         TEXT NOT NULL,
    size         INTEGER NOT NULL,
    updated_at   DATETIME NOT NULL
);
`

// Record is the last successful render of one artifact.
type Record struct {
	// Key identifies the artifact across builds: target name and artifact
	// file name.
	Key         string
	Fingerprint string
	// Hash is the BLAKE3 digest of the artifact bytes, hex encoded.
	Hash      string
	Size      int64
	UpdatedAt time.Time
}

// SQLiteStore keeps records in one SQLite file. It is safe for concurrent
// use.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path. Parent directories
// are created.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrStore)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	// One writer at a time; render workers serialize here.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrStore, err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Lookup returns the record stored under key. ok is false when there is
// none.
func (s *SQLiteStore) Lookup(ctx context.Context, key string) (rec Record, ok bool, err error) {
	rec.Key = key
	err = s.db.QueryRowContext(ctx,
		"SELECT fingerprint, hash, size, updated_at FROM artifacts WHERE key = ?", key,
	).Scan(&rec.Fingerprint, &rec.Hash, &rec.Size, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: lookup %q: %v", ErrStore, key, err)
	}
	return rec, true, nil
}

// Save inserts or replaces the record under rec.Key. A zero UpdatedAt is
// set to the current time.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	if rec.Key == "" {
		return fmt.Errorf("%w: record has no key", ErrStore)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO artifacts (key, fingerprint, hash, size, updated_at) VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            fingerprint = excluded.fingerprint,
            hash = excluded.hash,
            size = excluded.size,
            updated_at = excluded.updated_at
    `, rec.Key, rec.Fingerprint, rec.Hash, rec.Size, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: save %q: %v", ErrStore, rec.Key, err)
	}
	return nil
}

// Delete removes the record under key. Deleting a missing key is not an
// error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM artifacts WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrStore, key, err)
	}
	return nil
}

// Keys returns every stored key, sorted.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM artifacts ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: list: %v", ErrStore, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStore, err)
	}
	return keys, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
