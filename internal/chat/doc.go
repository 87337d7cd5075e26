// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the local view of the conversation with the remote service.
//
// The Manager applies every mutation optimistically: a sent message appears in
// the transcript before the service confirms it, and an edit shows its new
// content immediately. When the service rejects the operation the manager rolls
// the local state back. Failed sends remove exactly the optimistic message,
// identified by its local ID so duplicate content or timestamps cannot remove
// the wrong one. Failed edits and clears reconcile by re-fetching the whole
// thread, since the service may have applied downstream effects the client
// cannot predict.
//
// One operation runs at a time. While a fetch or send is in flight, further
// mutating calls return immediately without touching state or the error slot.
// The same holds without a signed-in session: every operation is a silent
// no-op until the token source produces a token. The manager keeps a single
// last error, cleared when the next operation starts.
//
// # Key Types
//
//   - Manager: conversation state and operations
//   - Service: the slice of the API client the manager calls
//
// # Usage
//
//	mgr := chat.NewManager(client, authMgr)
//	defer mgr.Close()
//
//	if err := mgr.FetchHistory(ctx); err != nil { ... }
//	if err := mgr.SendMessage(ctx, "hello"); err != nil { ... }
package chat
