// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/parley-tui/internal/api"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoSession indicates no session is persisted
	ErrNoSession = errors.New("no stored session")
	// ErrCorruptSession indicates the persisted session could not be decoded
	ErrCorruptSession = errors.New("stored session is corrupt")
)

// SessionError wraps a session store failure with the operation that caused it.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SCHEMA
// =============================================================================

// Row keys. The store holds a single session, so the table is a two-row
// key/value map rather than a user table.
const (
	keyToken    = "token"
	keyIdentity = "identity"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS session (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists the signed-in session in a local SQLite database.
// Token and identity snapshot are written and deleted in a single transaction
// so the store never holds one without the other.
type SessionStore struct {
	mu    sync.Mutex
	db    *sql.DB
	vault *Vault
}

// Open opens (or creates) the session store at the given database path.
func Open(dbPath string) (*SessionStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}

	vault, err := NewVault(dir)
	if err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &SessionError{Op: "open", Err: fmt.Errorf("failed to set pragma: %w", err)}
		}
	}

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, &SessionError{Op: "open", Err: fmt.Errorf("failed to initialize schema: %w", err)}
	}

	return &SessionStore{db: db, vault: vault}, nil
}

// Close closes the store and releases resources.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveSession persists the token and identity snapshot together.
func (s *SessionStore) SaveSession(creds *api.Credentials) error {
	if creds == nil || creds.Token == "" {
		return &SessionError{Op: "save", Err: errors.New("credentials missing token")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.vault.Seal(creds.Token)
	if err != nil {
		return &SessionError{Op: "save", Err: err}
	}

	identity, err := json.Marshal(creds.User)
	if err != nil {
		return &SessionError{Op: "save", Err: err}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &SessionError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	upsert := `INSERT INTO session (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := tx.Exec(upsert, keyToken, sealed, now); err != nil {
		return &SessionError{Op: "save", Err: err}
	}
	if _, err := tx.Exec(upsert, keyIdentity, string(identity), now); err != nil {
		return &SessionError{Op: "save", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &SessionError{Op: "save", Err: err}
	}
	return nil
}

// LoadSession returns the persisted session, or ErrNoSession when nobody is
// signed in. A readable token with an undecodable identity (or the reverse)
// reports ErrCorruptSession so callers can clear and start over.
func (s *SessionStore) LoadSession() (*api.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT key, value FROM session WHERE key IN (?, ?)`, keyToken, keyIdentity)
	if err != nil {
		return nil, &SessionError{Op: "load", Err: err}
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, &SessionError{Op: "load", Err: err}
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, &SessionError{Op: "load", Err: err}
	}

	if len(values) == 0 {
		return nil, ErrNoSession
	}

	sealed, hasToken := values[keyToken]
	identity, hasIdentity := values[keyIdentity]
	if !hasToken || !hasIdentity {
		return nil, ErrCorruptSession
	}

	token, err := s.vault.Open(sealed)
	if err != nil || token == "" {
		return nil, ErrCorruptSession
	}

	var user api.User
	if err := json.Unmarshal([]byte(identity), &user); err != nil || user.ID == "" {
		return nil, ErrCorruptSession
	}

	return &api.Credentials{Token: token, User: user}, nil
}

// ClearSession removes the token and identity snapshot together. Clearing an
// empty store is not an error.
func (s *SessionStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return &SessionError{Op: "clear", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session WHERE key IN (?, ?)`, keyToken, keyIdentity); err != nil {
		return &SessionError{Op: "clear", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &SessionError{Op: "clear", Err: err}
	}
	return nil
}

// HasSession reports whether a session row exists without decrypting it.
func (s *SessionStore) HasSession() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM session WHERE key = ?`, keyToken).Scan(&count)
	if err != nil {
		return false, &SessionError{Op: "has", Err: err}
	}
	return count > 0, nil
}
