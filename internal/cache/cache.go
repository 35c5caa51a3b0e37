// Package cache persists backend responses keyed by request content, so
// re-querying an unchanged position skips the process round trip.
// Entries are addressed by a content hash and never expire.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("cache entry not found")

// Key derives the cache key for one request.
func Key(command, options, payload string) string {
	h := sha256.New()
	h.Write([]byte(command))
	h.Write([]byte{0})
	h.Write([]byte(options))
	h.Write([]byte{0})
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// Store is a sqlite-backed response cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`
        PRAGMA journal_mode = WAL;
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get looks a response up by key. ok is false on a miss.
func (s *Store) Get(key string) (tag, content string, ok bool, err error) {
	err = s.db.QueryRow(
		"SELECT tag, content FROM responses WHERE key = ?",
		key,
	).Scan(&tag, &content)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to query response: %w", err)
	}
	return tag, content, true, nil
}

// Put stores a response, replacing any previous entry for the key.
func (s *Store) Put(key, tag, content string) error {
	_, err := s.db.Exec(`
        INSERT INTO responses (key, tag, content)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            tag = excluded.tag,
            content = excluded.content
    `, key, tag, content)
	if err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}
	return nil
}

// Delete removes one entry. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM responses WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}
	return nil
}

// Clear drops every cached response.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM responses"); err != nil {
		return fmt.Errorf("failed to clear responses: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
