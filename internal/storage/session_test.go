// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/parley-tui/internal/api"
)

func testCreds() *api.Credentials {
	return &api.Credentials{
		Token: "tok_secret_123",
		User:  api.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
	}
}

func openTestStore(t *testing.T) (*SessionStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "session.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dir
}

// =============================================================================
// SESSION ROUNDTRIP TESTS
// =============================================================================

func TestSaveAndLoadSession(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.SaveSession(testCreds()); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	creds, err := store.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if creds.Token != "tok_secret_123" {
		t.Errorf("Token = %q", creds.Token)
	}
	if creds.User.ID != "u1" || creds.User.Email != "ada@example.com" {
		t.Errorf("User = %+v", creds.User)
	}
}

func TestLoadSession_Empty(t *testing.T) {
	store, _ := openTestStore(t)

	if _, err := store.LoadSession(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestClearSession(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.SaveSession(testCreds()); err != nil {
		t.Fatal(err)
	}
	if err := store.ClearSession(); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	if _, err := store.LoadSession(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after clear, got %v", err)
	}

	// clearing an already-empty store succeeds
	if err := store.ClearSession(); err != nil {
		t.Errorf("second clear failed: %v", err)
	}
}

func TestSaveSession_Overwrites(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.SaveSession(testCreds()); err != nil {
		t.Fatal(err)
	}

	next := &api.Credentials{
		Token: "tok_new",
		User:  api.User{ID: "u2", Name: "Bob", Email: "bob@example.com"},
	}
	if err := store.SaveSession(next); err != nil {
		t.Fatal(err)
	}

	creds, err := store.LoadSession()
	if err != nil {
		t.Fatal(err)
	}
	if creds.Token != "tok_new" || creds.User.ID != "u2" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestSaveSession_RejectsEmptyToken(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.SaveSession(&api.Credentials{User: api.User{ID: "u1"}}); err == nil {
		t.Error("expected error for missing token")
	}
	if err := store.SaveSession(nil); err == nil {
		t.Error("expected error for nil credentials")
	}
}

func TestSession_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSession(testCreds()); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	creds, err := reopened.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession after reopen failed: %v", err)
	}
	if creds.Token != "tok_secret_123" {
		t.Errorf("Token = %q after reopen", creds.Token)
	}
}

func TestHasSession(t *testing.T) {
	store, _ := openTestStore(t)

	has, err := store.HasSession()
	if err != nil || has {
		t.Errorf("HasSession = %v, %v on empty store", has, err)
	}

	if err := store.SaveSession(testCreds()); err != nil {
		t.Fatal(err)
	}
	has, err = store.HasSession()
	if err != nil || !has {
		t.Errorf("HasSession = %v, %v after save", has, err)
	}
}

// =============================================================================
// VAULT TESTS
// =============================================================================

func TestVault_SealRoundtrip(t *testing.T) {
	vault, err := NewVault(t.TempDir())
	if err != nil {
		t.Fatalf("NewVault failed: %v", err)
	}

	sealed, err := vault.Seal("a secret token")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if !strings.HasPrefix(sealed, SealedPrefix) {
		t.Errorf("sealed value missing prefix: %q", sealed)
	}
	if strings.Contains(sealed, "a secret token") {
		t.Error("sealed value leaks plaintext")
	}

	opened, err := vault.Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != "a secret token" {
		t.Errorf("opened = %q", opened)
	}
}

func TestVault_SealIsNonDeterministic(t *testing.T) {
	vault, err := NewVault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	a, _ := vault.Seal("same input")
	b, _ := vault.Seal("same input")
	if a == b {
		t.Error("two seals of the same plaintext must differ (nonce reuse)")
	}
}

func TestVault_OpenPassthroughForPlaintext(t *testing.T) {
	vault, err := NewVault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	out, err := vault.Open("plain value")
	if err != nil || out != "plain value" {
		t.Errorf("Open = %q, %v", out, err)
	}
}

func TestVault_KeyIsolation(t *testing.T) {
	// a value sealed under one key directory cannot be opened under another
	a, err := NewVault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewVault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := a.Seal("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Open(sealed); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("expected ErrOpenFailed, got %v", err)
	}
}

func TestVault_PersistentKey(t *testing.T) {
	dir := t.TempDir()

	first, err := NewVault(dir)
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := first.Seal("secret")
	if err != nil {
		t.Fatal(err)
	}

	second, err := NewVault(dir)
	if err != nil {
		t.Fatal(err)
	}
	opened, err := second.Open(sealed)
	if err != nil {
		t.Fatalf("Open with reloaded key failed: %v", err)
	}
	if opened != "secret" {
		t.Errorf("opened = %q", opened)
	}
}
