// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

// AuthenticationError indicates the service rejected a sign-in attempt.
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// RegistrationError indicates the service rejected an account creation attempt.
type RegistrationError struct {
	Message string
	Cause   error
}

func (e *RegistrationError) Error() string {
	return e.Message
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

// ErrNotInitialized indicates a session operation ran before Initialize.
var ErrNotInitialized = errors.New("session not initialized")

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// Service is the slice of the API client the session manager needs.
type Service interface {
	Login(ctx context.Context, email, password string) (*api.Credentials, error)
	Register(ctx context.Context, name, email, password string) (*api.Credentials, error)
	Me(ctx context.Context, token string) (*api.User, error)
}

// SessionStore persists credentials between runs.
type SessionStore interface {
	SaveSession(creds *api.Credentials) error
	LoadSession() (*api.Credentials, error)
	ClearSession() error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the current session. All methods are safe for concurrent use.
type Manager struct {
	service Service
	store   SessionStore

	mu          sync.RWMutex
	current     *api.Credentials
	initialized bool
}

// NewManager creates a session manager over the given service and store.
func NewManager(service Service, store SessionStore) *Manager {
	return &Manager{
		service: service,
		store:   store,
	}
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Initialize restores a persisted session, revalidating the token against the
// service. Outcomes:
//   - no persisted session: start signed out
//   - token revalidates: refresh the identity snapshot and start signed in
//   - service says 401: the token is dead, tear the session down
//   - service unreachable or misbehaving: keep the persisted identity so the
//     app starts signed in; the next authenticated request will surface errors
//
// Initialize always leaves the manager initialized, even on failure.
func (m *Manager) Initialize(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.initialized = true
		m.mu.Unlock()
	}()

	creds, err := m.store.LoadSession()
	if err != nil {
		if errors.Is(err, storage.ErrNoSession) {
			return nil
		}
		if errors.Is(err, storage.ErrCorruptSession) {
			// unreadable state is cleared so the next run starts clean
			_ = m.store.ClearSession()
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	user, err := m.service.Me(ctx, creds.Token)
	if err != nil {
		if api.IsUnauthorized(err) {
			if clearErr := m.store.ClearSession(); clearErr != nil {
				return fmt.Errorf("failed to clear rejected session: %w", clearErr)
			}
			return nil
		}

		// snapshot fallback: the token may still be fine
		m.setCurrent(creds)
		return nil
	}

	refreshed := &api.Credentials{Token: creds.Token, User: *user}
	if err := m.store.SaveSession(refreshed); err != nil {
		// persistence failure does not invalidate the live session
		m.setCurrent(refreshed)
		return fmt.Errorf("failed to refresh stored session: %w", err)
	}

	m.setCurrent(refreshed)
	return nil
}

// Login signs in with email and password, replacing any current session.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &AuthenticationError{Message: "email and password are required"}
	}

	creds, err := m.service.Login(ctx, email, password)
	if err != nil {
		return nil, &AuthenticationError{Message: loginFailureMessage(err), Cause: err}
	}

	if err := m.store.SaveSession(creds); err != nil {
		return nil, &AuthenticationError{Message: "signed in but failed to save session", Cause: err}
	}

	m.setCurrent(creds)
	user := creds.User
	return &user, nil
}

// Register creates an account and returns the new identity. It does not
// establish a session: nothing is persisted and the manager stays signed
// out until the caller logs in with the new credentials.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*api.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, &RegistrationError{Message: "name, email, and password are required"}
	}

	creds, err := m.service.Register(ctx, name, email, password)
	if err != nil {
		return nil, &RegistrationError{Message: registerFailureMessage(err), Cause: err}
	}
	if creds.User.ID == "" {
		return nil, &RegistrationError{Message: "the server returned no account"}
	}

	user := creds.User
	return &user, nil
}

// Logout discards the current session locally. The service keeps no
// server-side session state for the token, so there is nothing to revoke.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return m.store.ClearSession()
}

// Invalidate drops the session after the service rejected its token mid-run.
func (m *Manager) Invalidate() error {
	return m.Logout()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Authenticated reports whether a user is signed in.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Initialized reports whether Initialize has completed. It never flips back.
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// CurrentUser returns a copy of the signed-in user, or nil when signed out.
func (m *Manager) CurrentUser() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	user := m.current.User
	return &user
}

// Token returns the current bearer token, or empty when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) setCurrent(creds *api.Credentials) {
	m.mu.Lock()
	m.current = creds
	m.mu.Unlock()
}

// =============================================================================
// FAILURE MESSAGES
// =============================================================================

// loginFailureMessage keeps the server's reason when it gave one.
func loginFailureMessage(err error) string {
	var clientErr *api.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case api.ErrTypeRejected, api.ErrTypeUnauthorized:
			return clientErr.Message
		case api.ErrTypeNetwork:
			return "could not reach the server"
		}
	}
	return "login failed"
}

func registerFailureMessage(err error) string {
	var clientErr *api.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case api.ErrTypeRejected, api.ErrTypeUnauthorized:
			return clientErr.Message
		case api.ErrTypeNetwork:
			return "could not reach the server"
		}
	}
	return "registration failed"
}
