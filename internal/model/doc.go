// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing a chat thread held on the parley service.
//
// # Key Types
//
//   - Conversation: ordered message sequence plus the server-side thread ID
//   - Message: single turn with role, content, and timestamp
//   - Role: message role enumeration (user, assistant)
//
// # Usage
//
// Create a conversation and append a turn:
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("Hello!"))
//
// Only user-authored messages may be edited; assistant messages are
// append-only. Sequence order is insertion order and carries no explicit
// sequence numbers.
package model
