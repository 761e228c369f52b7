// Package keystore persists decryption keys obtained during offline
// download so playback can retrieve them without a network round trip.
package keystore

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrKeyNotFound is returned when no key is stored under the requested id
var ErrKeyNotFound = errors.New("key not found")

const schema = `
CREATE TABLE IF NOT EXISTS content_keys (
	id         TEXT PRIMARY KEY,
	key_data   BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

// Store is a sqlite-backed persistent content-key store
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the key database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize key database: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores key bytes under id, replacing any previous value
func (s *Store) Save(ctx context.Context, id string, key []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content_keys (id, key_data, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET key_data = excluded.key_data, created_at = excluded.created_at`,
		id, key, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save key %s: %w", id, err)
	}
	return nil
}

// Load retrieves the key bytes stored under id
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	var key []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT key_data FROM content_keys WHERE id = ?`, id).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load key %s: %w", id, err)
	}
	return key, nil
}

// Delete removes the key stored under id. Deleting a missing id is not
// an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM content_keys WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", id, err)
	}
	return nil
}

// List returns the identifiers of all stored keys
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM content_keys ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// DeriveKeyID maps an original key URI to the identifier it is stored
// under. The mapping must stay stable across releases: rewritten
// playlists persist offline-key URLs containing it.
func DeriveKeyID(keyURI string) string {
	sum := sha1.Sum([]byte(keyURI))
	return hex.EncodeToString(sum[:])
}
