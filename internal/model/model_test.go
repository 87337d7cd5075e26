// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
	if msg.LocalID == "" {
		t.Error("LocalID should be generated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set at creation")
	}
}

func TestMessage_LocalIDsAreUnique(t *testing.T) {
	// Two messages created back to back may share a timestamp on coarse
	// clocks; their local IDs must still differ.
	a := NewUserMessage("x")
	b := NewUserMessage("x")
	if a.LocalID == b.LocalID {
		t.Errorf("LocalID collision: %q", a.LocalID)
	}
}

func TestMessage_Editable(t *testing.T) {
	if !NewUserMessage("a").Editable() {
		t.Error("user messages should be editable")
	}
	if NewAssistantMessage("b").Editable() {
		t.Error("assistant messages should not be editable")
	}
}

func TestMessage_SetContent(t *testing.T) {
	msg := NewUserMessage("old")
	before := msg.Timestamp
	time.Sleep(time.Millisecond)

	msg.SetContent("new")
	if msg.Content != "new" {
		t.Errorf("Content = %q, want 'new'", msg.Content)
	}
	if !msg.Timestamp.After(before) {
		t.Error("SetContent should reset the timestamp")
	}

	// Assistant content must never change
	bot := NewAssistantMessage("reply")
	bot.SetContent("tampered")
	if bot.Content != "reply" {
		t.Errorf("assistant content changed to %q", bot.Content)
	}
	if bot.Role != RoleAssistant {
		t.Errorf("assistant role changed to %q", bot.Role)
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("line one\nline two that goes on for quite a while indeed")
	got := msg.Preview(20)
	if len([]rune(got)) > 20 {
		t.Errorf("Preview too long: %q", got)
	}
	for _, r := range got {
		if r == '\n' {
			t.Errorf("Preview contains newline: %q", got)
		}
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation()

	if conv.ChatID != "" {
		t.Errorf("ChatID = %q, want empty", conv.ChatID)
	}
	if !conv.IsEmpty() {
		t.Error("new conversation should be empty")
	}
	if conv.Messages == nil {
		t.Error("Messages should be initialized, not nil")
	}
}

func TestConversation_AppendPreservesOrder(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("first"))
	conv.Append(NewAssistantMessage("second"))
	conv.Append(NewUserMessage("third"))

	want := []string{"first", "second", "third"}
	if conv.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", conv.Len(), len(want))
	}
	for i, content := range want {
		if conv.Messages[i].Content != content {
			t.Errorf("Messages[%d].Content = %q, want %q", i, conv.Messages[i].Content, content)
		}
	}
}

func TestConversation_RemoveByLocalID(t *testing.T) {
	conv := NewConversation()
	keep := NewUserMessage("keep")
	drop := NewUserMessage("drop")
	conv.Append(keep)
	conv.Append(drop)

	if !conv.RemoveByLocalID(drop.LocalID) {
		t.Fatal("RemoveByLocalID should report success")
	}
	if conv.Len() != 1 || conv.Messages[0].LocalID != keep.LocalID {
		t.Error("wrong message removed")
	}

	if conv.RemoveByLocalID("missing") {
		t.Error("RemoveByLocalID should report failure for unknown ID")
	}
}

func TestConversation_At(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("only"))

	if conv.At(0) == nil {
		t.Error("At(0) should return the message")
	}
	if conv.At(-1) != nil {
		t.Error("At(-1) should return nil")
	}
	if conv.At(1) != nil {
		t.Error("At(1) should return nil")
	}
}

func TestConversation_Replace(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("stale"))

	fresh := []*Message{NewUserMessage("a"), NewAssistantMessage("b")}
	conv.Replace("chat_42", fresh)

	if conv.ChatID != "chat_42" {
		t.Errorf("ChatID = %q, want chat_42", conv.ChatID)
	}
	if conv.Len() != 2 {
		t.Errorf("Len = %d, want 2 (replace is an overwrite, not a merge)", conv.Len())
	}

	// Replacing with nil messages yields an empty, non-nil slice
	conv.Replace("chat_43", nil)
	if conv.Messages == nil || conv.Len() != 0 {
		t.Error("Replace(nil) should leave an empty message slice")
	}
}

func TestConversation_Reset(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("x"))
	conv.ChatID = "chat_1"

	conv.Reset()
	if conv.ChatID != "" || !conv.IsEmpty() {
		t.Error("Reset should clear both messages and chat ID")
	}
}

func TestConversation_Title(t *testing.T) {
	conv := NewConversation()
	if conv.Title() != "New conversation" {
		t.Errorf("empty Title = %q", conv.Title())
	}

	conv.Append(NewAssistantMessage("greeting"))
	conv.Append(NewUserMessage("how do I sort a slice?"))
	if conv.Title() != "how do I sort a slice?" {
		t.Errorf("Title = %q, want first user message", conv.Title())
	}
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversation()
	conv.ChatID = "chat_9"
	conv.Append(NewUserMessage("original"))

	clone := conv.Clone()
	clone.Messages[0].Content = "mutated"
	clone.ChatID = "other"

	if conv.Messages[0].Content != "original" {
		t.Error("Clone should deep-copy messages")
	}
	if conv.ChatID != "chat_9" {
		t.Error("Clone should not share chat ID")
	}
}
