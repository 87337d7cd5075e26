// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrClosed indicates the manager has been shut down
	ErrClosed = errors.New("conversation manager closed")
	// ErrNoThread indicates an operation that needs a server-side thread ran
	// before one exists
	ErrNoThread = errors.New("no conversation to operate on")
	// ErrBadIndex indicates an edit targeted a message that does not exist
	ErrBadIndex = errors.New("message index out of range")
	// ErrNotEditable indicates an edit targeted a message the user did not write
	ErrNotEditable = errors.New("only your own messages can be edited")
)

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// Service is the slice of the API client the conversation manager needs.
type Service interface {
	FetchConversation(ctx context.Context, token string) (*api.Thread, error)
	SendMessage(ctx context.Context, token, message string) (*api.SendResult, error)
	EditMessage(ctx context.Context, token, chatID string, index int, content string) error
	DeleteConversation(ctx context.Context, token, chatID string) error
}

// TokenSource supplies the current bearer token. The auth manager satisfies
// this, so the conversation manager always sends the live credential.
type TokenSource interface {
	Token() string
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds the local conversation state and runs operations against the
// service. All methods are safe for concurrent use.
type Manager struct {
	service Service
	tokens  TokenSource

	mu      sync.Mutex
	conv    *model.Conversation
	loading bool
	sending bool
	lastErr error

	// lifetime bounds in-flight requests to the manager, not to whichever
	// view happened to issue them
	lifetime context.Context
	cancel   context.CancelFunc
	closed   bool
}

// NewManager creates a conversation manager.
func NewManager(service Service, tokens TokenSource) *Manager {
	lifetime, cancel := context.WithCancel(context.Background())
	return &Manager{
		service:  service,
		tokens:   tokens,
		conv:     model.NewConversation(),
		lifetime: lifetime,
		cancel:   cancel,
	}
}

// Close cancels in-flight requests and rejects further operations.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
}

// opContext ties the caller's context to the manager lifetime so Close
// cancels whatever is in flight.
func (m *Manager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// FetchHistory replaces the local conversation with the server's thread.
// Without a signed-in session it is a silent no-op.
func (m *Manager) FetchHistory(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.loading || m.sending || m.tokens.Token() == "" {
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	m.lastErr = nil
	m.mu.Unlock()

	ctx, done := m.opContext(ctx)
	defer done()

	thread, err := m.service.FetchConversation(ctx, m.tokens.Token())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if m.closed {
		return ErrClosed
	}
	if err != nil {
		m.lastErr = err
		return err
	}

	m.conv.Replace(thread.ID, fromWire(thread.Messages))
	return nil
}

// SendMessage appends the user's message optimistically, submits it, and
// appends the reply. A failed send removes exactly the optimistic message.
// Blank input, calls without a signed-in session, and calls made while
// another operation is in flight are silent no-ops.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.loading || m.sending || m.tokens.Token() == "" {
		m.mu.Unlock()
		return nil
	}
	m.sending = true
	m.lastErr = nil

	pending := model.NewUserMessage(text)
	m.conv.Append(pending)
	m.mu.Unlock()

	ctx, done := m.opContext(ctx)
	defer done()

	result, err := m.service.SendMessage(ctx, m.tokens.Token(), text)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sending = false
	if m.closed {
		return ErrClosed
	}
	if err != nil {
		m.conv.RemoveByLocalID(pending.LocalID)
		m.lastErr = err
		return err
	}

	m.conv.Append(model.NewAssistantMessage(result.Reply))
	if m.conv.ChatID == "" && result.ChatID != "" {
		m.conv.ChatID = result.ChatID
	}
	return nil
}

// EditMessage rewrites one of the user's messages. The new content shows
// immediately; if the service rejects the edit the whole thread is re-fetched,
// because the server may regenerate replies downstream of the edited message.
// Without a signed-in session it is a silent no-op. A bad target (missing
// index, assistant message, no saved thread) returns its sentinel without
// recording anything in the error slot: the conversation is untouched, so
// there is no failure state to surface.
func (m *Manager) EditMessage(ctx context.Context, index int, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.loading || m.sending || m.tokens.Token() == "" {
		m.mu.Unlock()
		return nil
	}

	target := m.conv.At(index)
	if target == nil {
		m.mu.Unlock()
		return ErrBadIndex
	}
	if !target.Editable() {
		m.mu.Unlock()
		return ErrNotEditable
	}
	chatID := m.conv.ChatID
	if chatID == "" {
		m.mu.Unlock()
		return ErrNoThread
	}

	m.sending = true
	m.lastErr = nil
	previous := target.Content
	target.SetContent(content)
	m.mu.Unlock()

	ctx, done := m.opContext(ctx)
	defer done()

	err := m.service.EditMessage(ctx, m.tokens.Token(), chatID, index, content)

	m.mu.Lock()
	if m.closed {
		m.sending = false
		m.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		// stay busy through the reconciliation fetch so a concurrent send
		// cannot interleave with the full overwrite
		m.lastErr = err
		m.mu.Unlock()
		m.refetch(ctx, previous, index)
		m.mu.Lock()
		m.sending = false
		m.mu.Unlock()
		return err
	}
	m.sending = false
	m.mu.Unlock()
	return nil
}

// ClearChat deletes the server-side thread and empties the transcript. The
// transcript clears immediately; a failed delete re-fetches so the local view
// matches whatever the server still holds. Without a signed-in session it is
// a silent no-op.
func (m *Manager) ClearChat(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.loading || m.sending || m.tokens.Token() == "" {
		m.mu.Unlock()
		return nil
	}
	chatID := m.conv.ChatID
	if chatID == "" {
		// nothing persisted server-side, clearing is purely local
		m.conv.Reset()
		m.lastErr = nil
		m.mu.Unlock()
		return nil
	}

	m.sending = true
	m.lastErr = nil
	m.conv.Reset()
	m.mu.Unlock()

	ctx, done := m.opContext(ctx)
	defer done()

	err := m.service.DeleteConversation(ctx, m.tokens.Token(), chatID)

	m.mu.Lock()
	if m.closed {
		m.sending = false
		m.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		m.lastErr = err
		m.mu.Unlock()
		m.refetch(ctx, "", -1)
		m.mu.Lock()
		m.sending = false
		m.mu.Unlock()
		return err
	}
	m.sending = false
	m.mu.Unlock()
	return nil
}

// NewChat drops the local thread without touching the server. The next send
// starts a fresh thread and adopts the ID the service assigns it.
func (m *Manager) NewChat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.conv.Reset()
	m.lastErr = nil
}

// refetch reconciles local state with the server after a failed mutation.
// When the re-fetch itself fails, the optimistic edit is undone by hand so
// the transcript is not left showing unconfirmed content.
func (m *Manager) refetch(ctx context.Context, previousContent string, index int) {
	thread, err := m.service.FetchConversation(ctx, m.tokens.Token())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if err != nil {
		if index >= 0 {
			if msg := m.conv.At(index); msg != nil {
				msg.SetContent(previousContent)
			}
		}
		return
	}
	m.conv.Replace(thread.ID, fromWire(thread.Messages))
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a snapshot of the transcript in order.
func (m *Manager) Messages() []*model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Clone().Messages
}

// Snapshot returns a deep copy of the whole conversation.
func (m *Manager) Snapshot() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Clone()
}

// ChatID returns the server-assigned thread ID, or empty before the first send.
func (m *Manager) ChatID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.ChatID
}

// Loading reports whether an initial history fetch is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Sending reports whether a mutating operation is in flight.
func (m *Manager) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// Busy reports whether any operation is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading || m.sending
}

// LastError returns the most recent operation failure, or nil. The slot is
// cleared when the next operation starts.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError dismisses the current error without running an operation.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = nil
}

// Len returns the number of messages in the transcript.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Len()
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// fromWire converts server messages into local ones, assigning fresh local
// IDs. Unknown roles map to assistant so nothing the server sends is dropped.
func fromWire(wire []api.WireMessage) []*model.Message {
	messages := make([]*model.Message, 0, len(wire))
	for _, w := range wire {
		role := model.RoleAssistant
		if w.Role == string(model.RoleUser) {
			role = model.RoleUser
		}
		msg := model.NewMessage(role, w.Content)
		if !w.Timestamp.IsZero() {
			msg.Timestamp = w.Timestamp
		}
		messages = append(messages, msg)
	}
	return messages
}
