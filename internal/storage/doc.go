// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the signed-in session between runs.
//
// The store keeps exactly one session: the bearer token for the remote chat
// service plus a snapshot of the signed-in user's profile. Both are written
// and cleared together so the persisted state never holds a token without an
// identity or the reverse. The token is encrypted at rest with AES-256-GCM
// under a machine-local key.
//
// # Key Types
//
//   - SessionStore: SQLite-backed single-session store
//   - Vault: AES-256-GCM sealing for values at rest
//
// # Usage
//
//	store, err := storage.Open(dbPath)
//	if err != nil { ... }
//	defer store.Close()
//
//	creds, err := store.LoadSession()
//	if errors.Is(err, storage.ErrNoSession) {
//		// nobody signed in
//	}
package storage
