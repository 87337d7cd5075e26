// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the parley chat service.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the parley service client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is comparison against the sentinel values below.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNetwork           // request never completed (DNS, refused, timeout)
	ErrTypeUnauthorized      // 401: credential invalid or expired
	ErrTypeRejected          // service reachable but refused the operation
	ErrTypeInvalidResponse   // 2xx with a body the client cannot use
)

// Sentinel errors for easy checking.
var (
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "credential rejected by service"}
	ErrTimeout      = &ClientError{Type: ErrTypeNetwork, Message: "request timed out"}

	errMissingUser = errors.New("user data not found in response")
)

// IsUnauthorized checks if an error indicates an invalid or expired credential.
func IsUnauthorized(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnauthorized
	}
	return false
}

// IsNetwork checks if an error means the request never reached the service.
func IsNetwork(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNetwork
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// MaxResponseSize is the maximum allowed response body size.
// SECURITY: Response size limit prevents memory exhaustion from a
// misbehaving or compromised service.
const MaxResponseSize = 4 * 1024 * 1024 // 4MB

// ClientConfig holds configuration options for the service client.
type ClientConfig struct {
	// BaseURL is the service base URL, without a trailing slash.
	BaseURL string

	// Timeout for requests (default: 30s for chat, which waits on the
	// assistant; auth endpoints finish well inside it)
	Timeout time.Duration

	// RequestsPerSecond caps the client-side request rate (default: 5).
	RequestsPerSecond float64

	// Burst is the rate limiter burst size (default: 10).
	Burst int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "https://api.parley.chat",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the parley chat service.
//
// The Client is thread-safe for concurrent use. It holds no credential of
// its own: callers pass the bearer token per call, which keeps session
// ownership in one place (the auth store).
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new service client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new service client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "https://api.parley.chat"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 5
	}
	if config.Burst == 0 {
		config.Burst = 10
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login exchanges email and password for a credential. The request carries
// no bearer token. The server's error field, when present, becomes the
// returned message.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeCredentials(body)
}

// Register creates a new identity. The service answers with the same
// token+user envelope as login; whether the caller establishes a session
// from it is the caller's decision.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/register", "", registerRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeCredentials(body)
}

// Me fetches the identity the given credential belongs to. A 401 response
// is returned as ErrUnauthorized; the caller treats it as session teardown.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, err
	}

	user, err := decodeUser(body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode identity", Cause: err}
	}
	return user, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// FetchConversation retrieves the caller's active thread: its ID and the
// full message list.
func (c *Client) FetchConversation(ctx context.Context, token string) (*Thread, error) {
	body, err := c.do(ctx, http.MethodGet, "/chat/all", token, nil)
	if err != nil {
		return nil, err
	}

	var thread Thread
	if err := json.Unmarshal(body, &thread); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode conversation", Cause: err}
	}
	return &thread, nil
}

// SendMessage submits a user message for the caller's current thread and
// returns the assistant reply. The service creates a thread implicitly when
// none exists; the new ID comes back in the result.
func (c *Client) SendMessage(ctx context.Context, token, message string) (*SendResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/chat", token, sendRequest{Message: message})
	if err != nil {
		return nil, err
	}

	var result SendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode reply", Cause: err}
	}
	if result.Reply == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "reply missing from response"}
	}
	return &result, nil
}

// DeleteConversation asks the service to delete the thread. Any 2xx is
// success; the body is discarded.
func (c *Client) DeleteConversation(ctx context.Context, token, chatID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/chat/"+chatID, token, nil)
	return err
}

// EditMessage replaces the content of the message at index within the
// thread. The service recomputes any downstream effects of the edit; the
// caller re-fetches rather than assuming.
func (c *Client) EditMessage(ctx context.Context, token, chatID string, index int, content string) error {
	path := "/chat/" + chatID + "/message/" + strconv.Itoa(index)
	_, err := c.do(ctx, http.MethodPut, path, token, editRequest{Content: content})
	return err
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do issues one request and returns the response body on any 2xx status.
// Non-2xx becomes a ClientError carrying the server's error field when the
// body supplies one. A 401 maps to ErrTypeUnauthorized regardless of path.
func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeNetwork, Message: "request canceled", Cause: err}
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	// SECURITY: Response size limit prevents memory exhaustion
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeNetwork, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var svcErr serviceError
		if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Error != "" {
			return nil, &ClientError{Type: ErrTypeRejected, Message: svcErr.Error}
		}
		return nil, &ClientError{Type: ErrTypeRejected, Message: "request failed: " + resp.Status}
	}

	return body, nil
}

// decodeCredentials parses a login/register response and validates that the
// token and identity arrived together. A 2xx with either missing is treated
// as malformed, never as a partial success.
func decodeCredentials(body []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if creds.Token == "" || creds.User.ID == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from server"}
	}
	return &creds, nil
}
