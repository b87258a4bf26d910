// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package request tracks the lifecycle of user-initiated backend calls.
//
// Every independent action (send a chat message, look up a code, look up a
// vehicle, upload manuals) owns one Slot. A slot moves through
//
//	Idle -> Pending -> Success(value) | Failure(message)
//
// and can be invoked again from any state. Each invocation returns a ticket;
// only the resolution carrying the latest ticket is applied, so a slow
// response can never overwrite the outcome of a newer request.
//
// Results travel back to the owner as Result values, usually wrapped in a
// Resolution message on the UI event loop.
package request
