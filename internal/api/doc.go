// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the parley chat service.
//
// The service exposes a small JSON API with bearer-token authorization:
//
//	POST /auth/login                      {email, password} -> {token, user}
//	POST /auth/register                   {name, email, password} -> {token, user}
//	GET  /auth/me                         -> {user} or bare user fields
//	GET  /chat/all                        -> {_id, messages[]}
//	POST /chat                            {message} -> {reply, chatId?}
//	DELETE /chat/{chatId}                 -> any 2xx
//	PUT  /chat/{chatId}/message/{index}   {content} -> any 2xx
//
// Errors are classified into network failures (the request never completed)
// and rejections (the service answered with a non-2xx status or a malformed
// body); a 401 from /auth/me is surfaced as ErrUnauthorized because it forces
// session teardown in the caller.
package api
