// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the signed-in session against the remote chat service.
//
// The Manager owns the current credentials: it signs users in and out, persists
// the session across runs, and revalidates a persisted token at startup. A 401
// during revalidation tears the session down completely; any other failure
// falls back to the persisted profile snapshot so the app still starts with a
// usable identity.
//
// # Key Types
//
//   - Manager: session lifecycle (Login, Register, Logout, Initialize)
//   - AuthenticationError: sign-in rejected by the service
//   - RegistrationError: account creation rejected by the service
//
// # Usage
//
//	mgr := auth.NewManager(client, store)
//	mgr.Initialize(ctx)
//	if mgr.Authenticated() {
//		fmt.Println("signed in as", mgr.CurrentUser().Email)
//	}
package auth
