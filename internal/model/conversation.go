// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "time"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered message sequence currently displayed plus
// the identifier of the server-side thread backing it.
//
// ChatID is empty until a history fetch or a send establishes one. Sequence
// order is insertion order; there are no explicit sequence numbers.
type Conversation struct {
	ChatID   string     `json:"chat_id,omitempty"`
	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty conversation with no thread ID.
func NewConversation() *Conversation {
	return &Conversation{
		Messages: make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
}

// RemoveByLocalID removes the message with the given local ID.
// Returns true if a message was removed.
func (c *Conversation) RemoveByLocalID(id string) bool {
	for i, msg := range c.Messages {
		if msg.LocalID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// At returns the message at index, or nil if out of range.
func (c *Conversation) At(index int) *Message {
	if index < 0 || index >= len(c.Messages) {
		return nil
	}
	return c.Messages[index]
}

// Replace overwrites the entire conversation with the given thread ID and
// messages. Used when a history fetch makes the server's view authoritative;
// this is a full overwrite, never a merge.
func (c *Conversation) Replace(chatID string, messages []*Message) {
	if messages == nil {
		messages = make([]*Message, 0)
	}
	c.ChatID = chatID
	c.Messages = messages
}

// Reset clears all messages and forgets the thread ID.
func (c *Conversation) Reset() {
	c.ChatID = ""
	c.Messages = make([]*Message, 0)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// Title returns a short label for the conversation derived from the first
// user message, or a default for empty threads.
func (c *Conversation) Title() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return msg.Preview(50)
		}
	}
	return "New conversation"
}

// UpdatedAt returns the timestamp of the most recent message, or the zero
// time for an empty conversation.
func (c *Conversation) UpdatedAt() time.Time {
	if last := c.Last(); last != nil {
		return last.Timestamp
	}
	return time.Time{}
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ChatID:   c.ChatID,
		Messages: make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return clone
}
