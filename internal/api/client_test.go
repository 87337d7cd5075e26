// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient points a client at a test server with relaxed timeouts.
func newTestClient(srv *httptest.Server) *Client {
	c := NewClientWithConfig(&ClientConfig{
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})
	// httptest servers speak plain HTTP; drop the TLS-tuned transport.
	c.httpClient = srv.Client()
	return c
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}

		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "a@b.c" || req["password"] != "hunter2" {
			t.Errorf("unexpected body: %v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok_1",
			"user":  map[string]string{"_id": "u1", "email": "a@b.c"},
		})
	}))
	defer srv.Close()

	creds, err := newTestClient(srv).Login(context.Background(), "a@b.c", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if creds.Token != "tok_1" || creds.User.ID != "u1" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestLogin_ServerErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Login(context.Background(), "a@b.c", "nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "invalid credentials" {
		t.Errorf("error = %q, want server-provided reason", err.Error())
	}
}

func TestLogin_MissingToken(t *testing.T) {
	// 2xx with an incomplete envelope is malformed, not a partial success.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"_id": "u1", "email": "a@b.c"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Login(context.Background(), "a@b.c", "pw")
	if err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestRegister_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["name"] != "Ada" {
			t.Errorf("name = %q", req["name"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok_2",
			"user":  map[string]string{"_id": "u2", "name": "Ada", "email": "ada@b.c"},
		})
	}))
	defer srv.Close()

	creds, err := newTestClient(srv).Register(context.Background(), "Ada", "ada@b.c", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if creds.User.Name != "Ada" {
		t.Errorf("user = %+v", creds.User)
	}
}

func TestMe_WrappedAndBareShapes(t *testing.T) {
	bodies := []string{
		`{"user": {"_id": "u1", "email": "a@b.c"}}`,
		`{"_id": "u1", "email": "a@b.c"}`,
	}

	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(body))
		}))

		user, err := newTestClient(srv).Me(context.Background(), "tok")
		if err != nil {
			t.Errorf("Me failed for body %s: %v", body, err)
		} else if user.ID != "u1" {
			t.Errorf("user = %+v for body %s", user, body)
		}
		srv.Close()
	}
}

func TestMe_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Me(context.Background(), "stale")
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized classification, got %v", err)
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestFetchConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/chat/all" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"_id": "chat_1",
			"messages": []map[string]string{
				{"role": "user", "content": "hi"},
				{"role": "assistant", "content": "hello"},
			},
		})
	}))
	defer srv.Close()

	thread, err := newTestClient(srv).FetchConversation(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchConversation failed: %v", err)
	}
	if thread.ID != "chat_1" || len(thread.Messages) != 2 {
		t.Errorf("thread = %+v", thread)
	}
	if thread.Messages[1].Role != "assistant" {
		t.Errorf("messages out of order: %+v", thread.Messages)
	}
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["message"] != "hello" {
			t.Errorf("message = %q", req["message"])
		}
		json.NewEncoder(w).Encode(map[string]string{"reply": "hi there", "chatId": "chat_9"})
	}))
	defer srv.Close()

	result, err := newTestClient(srv).SendMessage(context.Background(), "tok", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.Reply != "hi there" || result.ChatID != "chat_9" {
		t.Errorf("result = %+v", result)
	}
}

func TestSendMessage_MissingReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendMessage(context.Background(), "tok", "hello")
	if err == nil {
		t.Fatal("expected error for missing reply")
	}
}

func TestEditMessage_PathAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/chat/chat_1/message/3" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["content"] != "new text" {
			t.Errorf("content = %q", req["content"])
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if err := newTestClient(srv).EditMessage(context.Background(), "tok", "chat_1", 3, "new text"); err != nil {
		t.Fatalf("EditMessage failed: %v", err)
	}
}

func TestDeleteConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/chat/chat_1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := newTestClient(srv).DeleteConversation(context.Background(), "tok", "chat_1"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
}

// =============================================================================
// ERROR CLASSIFICATION TESTS
// =============================================================================

func TestNetworkFailureClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(srv)
	srv.Close() // connection refused from here on

	_, err := client.FetchConversation(context.Background(), "tok")
	if !IsNetwork(err) {
		t.Errorf("expected network classification, got %v", err)
	}
}

func TestRejectionWithoutErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("oops, not json"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendMessage(context.Background(), "tok", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsNetwork(err) || IsUnauthorized(err) {
		t.Errorf("500 should classify as rejection, got %v", err)
	}
}
