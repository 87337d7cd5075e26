// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

func TestToastStack_PushAndCap(t *testing.T) {
	var stack ToastStack
	for i := 0; i < 5; i++ {
		stack.Push(NewStatusToast("msg"))
	}
	if stack.Len() != maxVisibleToasts {
		t.Errorf("Len = %d, want %d", stack.Len(), maxVisibleToasts)
	}
}

func TestToastStack_SweepRemovesExpired(t *testing.T) {
	var stack ToastStack

	expired := NewStatusToast("old")
	expired.CreatedAt = time.Now().Add(-time.Minute)
	stack.Push(expired)
	stack.Push(NewErrorToast("fresh"))

	remaining := stack.Sweep()
	if !remaining {
		t.Error("Sweep should report remaining toasts")
	}
	if stack.Len() != 1 {
		t.Errorf("Len = %d after sweep, want 1", stack.Len())
	}
}

func TestToastStack_Dismiss(t *testing.T) {
	var stack ToastStack
	stack.Push(NewStatusToast("first"))
	stack.Push(NewStatusToast("second"))

	stack.Dismiss()
	if stack.Len() != 1 {
		t.Errorf("Len = %d after dismiss, want 1", stack.Len())
	}

	stack.Dismiss()
	stack.Dismiss() // dismissing an empty stack is harmless
	if stack.Len() != 0 {
		t.Errorf("Len = %d, want 0", stack.Len())
	}
}

func TestToastStack_TickOnlyWhileVisible(t *testing.T) {
	var stack ToastStack
	if stack.TickCmd() != nil {
		t.Error("empty stack must not schedule ticks")
	}
	stack.Push(NewStatusToast("x"))
	if stack.TickCmd() == nil {
		t.Error("non-empty stack must schedule a tick")
	}
}

func TestToast_View(t *testing.T) {
	var stack ToastStack
	stack.Push(NewErrorToast("could not send message"))

	out := stack.View(styles.NewTheme(), 80)
	if !strings.Contains(out, "could not send message") {
		t.Errorf("view missing message: %q", out)
	}
}

func TestToastIDsUnique(t *testing.T) {
	a := NewStatusToast("a")
	b := NewStatusToast("b")
	if a.ID == b.ID {
		t.Error("toast IDs must be unique")
	}
}
