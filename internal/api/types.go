// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the parley chat service.
package api

import (
	"encoding/json"
	"time"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// User is the identity record held by the service.
type User struct {
	ID        string `json:"_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Credentials pairs a bearer token with the identity it belongs to.
// Both fields are always present on a successful login or register response.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// WireMessage is a single conversation turn as the service stores it.
type WireMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Thread is the persisted conversation returned by GET /chat/all.
type Thread struct {
	ID       string        `json:"_id"`
	Messages []WireMessage `json:"messages"`
}

// SendResult is the reply payload from POST /chat. ChatID is present when
// the service created a new thread for this message.
type SendResult struct {
	Reply  string `json:"reply"`
	ChatID string `json:"chatId,omitempty"`
}

// =============================================================================
// REQUEST BODIES
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendRequest struct {
	Message string `json:"message"`
}

type editRequest struct {
	Content string `json:"content"`
}

// serviceError is the error envelope the service attaches to non-2xx
// responses. The field is optional; absent means a generic failure.
type serviceError struct {
	Error string `json:"error"`
}

// meResponse handles the two shapes of GET /auth/me: a {user: {...}} wrapper
// or the user fields at the top level.
type meResponse struct {
	User *User `json:"user"`
}

// decodeUser extracts the identity from a /auth/me body in either shape.
func decodeUser(data []byte) (*User, error) {
	var wrapped meResponse
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}

	var bare User
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	if bare.ID == "" {
		return nil, errMissingUser
	}
	return &bare, nil
}
