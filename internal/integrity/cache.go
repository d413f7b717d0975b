package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// CacheEntry is one derived-data cache record: a blob keyed by name,
// stamped with the three hashes design doc Section 4.12 requires be
// checked on load — if any of them disagrees with the current run's
// values, the cache is stale and must be regenerated rather than trusted.
type CacheEntry struct {
	Name         string `db:"name"`
	SourceHashes string `db:"source_hashes"` // combined hex SHA-256 of the specific source files this entry was derived from
	ManifestHash string `db:"manifest_hash"` // the full game-data manifest hash active when this entry was built
	DataHash     string `db:"data_hash"`     // hex SHA-256 of Blob itself, guards against on-disk corruption
	Blob         []byte `db:"blob"`
}

// Store is a SQLite-backed cache for derived data (precomputed adjacency
// lists, trade topology, anything expensive enough to not recompute on
// every load). Grounded on the teacher's internal/persistence/db.go
// (sqlx.Open over modernc.org/sqlite, explicit migrate-on-open schema).
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates the cache database at path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS cache_entries (
		name TEXT PRIMARY KEY,
		source_hashes TEXT NOT NULL,
		manifest_hash TEXT NOT NULL,
		data_hash TEXT NOT NULL,
		blob BLOB NOT NULL
	)`)
	return err
}

// Put writes or replaces a cache entry, computing DataHash from blob
// itself so Get can detect on-disk corruption independent of the two
// hashes the caller supplies.
func (s *Store) Put(name, sourceHashes, manifestHash string, blob []byte) error {
	sum := sha256.Sum256(blob)
	dataHash := hex.EncodeToString(sum[:])
	_, err := s.conn.Exec(`
		INSERT INTO cache_entries (name, source_hashes, manifest_hash, data_hash, blob)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source_hashes = excluded.source_hashes,
			manifest_hash = excluded.manifest_hash,
			data_hash = excluded.data_hash,
			blob = excluded.blob`,
		name, sourceHashes, manifestHash, dataHash, blob)
	return err
}

// Validate loads the entry for name and checks all three hashes against
// the caller's current values (the source files' combined hash, the
// active manifest hash, and the stored blob's own integrity hash). A
// mismatch on any of the three means the cache must be regenerated
// rather than trusted (design doc Section 4.12); Validate reports which
// by returning a non-nil *StaleCacheError rather than a bare bool so
// callers can log why.
func (s *Store) Validate(name, sourceHashes, manifestHash string) (CacheEntry, error) {
	var entry CacheEntry
	err := s.conn.Get(&entry, `
		SELECT name, source_hashes, manifest_hash, data_hash, blob
		FROM cache_entries WHERE name = ?`, name)
	if err != nil {
		return CacheEntry{}, &StaleCacheError{Name: name, Reason: "no cached entry"}
	}

	sum := sha256.Sum256(entry.Blob)
	actualDataHash := hex.EncodeToString(sum[:])

	switch {
	case entry.SourceHashes != sourceHashes:
		return CacheEntry{}, &StaleCacheError{Name: name, Reason: "source files changed"}
	case entry.ManifestHash != manifestHash:
		return CacheEntry{}, &StaleCacheError{Name: name, Reason: "manifest changed"}
	case entry.DataHash != actualDataHash:
		return CacheEntry{}, &StaleCacheError{Name: name, Reason: "blob corrupted on disk"}
	}
	return entry, nil
}

// StaleCacheError is returned by Validate when a cache entry cannot be
// trusted and must be regenerated.
type StaleCacheError struct {
	Name   string
	Reason string
}

func (e *StaleCacheError) Error() string {
	return fmt.Sprintf("cache entry %q stale: %s", e.Name, e.Reason)
}
