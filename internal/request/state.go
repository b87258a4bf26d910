// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package request

import (
	"errors"
	"strings"
)

// errUnknown stands in for a nil error handed to Err. Its empty message makes
// the slot fall back to its feature-specific text.
var errUnknown = errors.New("")

// Fallback messages used when a failure carries no text of its own.
const (
	FallbackQuery  = "Failed to query"
	FallbackLookup = "Lookup failed"
	FallbackUpload = "Upload failed"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the tag of a State.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusFailure
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// =============================================================================
// STATE
// =============================================================================

// State is the tagged union Idle | Pending | Success(T) | Failure(message).
// A value is present only in Success and a message only in Failure.
type State[T any] struct {
	status  Status
	value   T
	message string
}

// Status returns the tag.
func (s State[T]) Status() Status { return s.status }

// IsIdle reports whether nothing has been requested yet.
func (s State[T]) IsIdle() bool { return s.status == StatusIdle }

// IsPending reports whether a request is in flight.
func (s State[T]) IsPending() bool { return s.status == StatusPending }

// Value returns the result of a successful request.
func (s State[T]) Value() (T, bool) {
	return s.value, s.status == StatusSuccess
}

// Message returns the error text of a failed request.
func (s State[T]) Message() (string, bool) {
	return s.message, s.status == StatusFailure
}

// =============================================================================
// SLOT
// =============================================================================

// Slot is the lifecycle controller for one user-facing action.
//
// Slots are owned by a single event loop and are not safe for concurrent use;
// the network work they track runs elsewhere and reports back through Resolve.
type Slot[T any] struct {
	name     string
	fallback string
	seq      uint64
	state    State[T]
}

// NewSlot creates an idle slot. fallback is shown when a failure has no text.
func NewSlot[T any](name, fallback string) *Slot[T] {
	return &Slot[T]{name: name, fallback: fallback}
}

// Name identifies the slot in logs and messages.
func (s *Slot[T]) Name() string { return s.name }

// State returns a snapshot of the current state.
func (s *Slot[T]) State() State[T] { return s.state }

// Pending reports whether the latest invocation is still unresolved.
func (s *Slot[T]) Pending() bool { return s.state.status == StatusPending }

// Ticket returns the sequence number of the latest invocation.
func (s *Slot[T]) Ticket() uint64 { return s.seq }

// Invoke starts a new request: any prior error or result is dropped, the slot
// becomes Pending and the returned ticket must accompany the resolution.
func (s *Slot[T]) Invoke() uint64 {
	s.seq++
	s.state = State[T]{status: StatusPending}
	return s.seq
}

// Resolve applies the outcome of the invocation identified by ticket.
// Outcomes of superseded invocations are discarded and Resolve returns false.
func (s *Slot[T]) Resolve(ticket uint64, r Result[T]) bool {
	if ticket != s.seq || s.state.status != StatusPending {
		return false
	}
	if v, err := r.Unwrap(); r.IsOk() {
		s.state = State[T]{status: StatusSuccess, value: v}
	} else {
		s.state = State[T]{status: StatusFailure, message: FailureMessage(err, s.fallback)}
	}
	return true
}

// Fail resolves the latest invocation with err. It is used for failures
// detected before any request leaves the process.
func (s *Slot[T]) Fail(err error) {
	if s.state.status != StatusPending {
		s.Invoke()
	}
	s.Resolve(s.seq, Err[T](err))
}

// Reset returns the slot to Idle. In-flight resolutions become stale.
func (s *Slot[T]) Reset() {
	s.seq++
	s.state = State[T]{}
}

// FailureMessage returns the user-facing text for err, or fallback when the
// error carries no message.
func FailureMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolution carries a finished request back to the slot's owner.
type Resolution[T any] struct {
	Slot   string
	Ticket uint64
	Result Result[T]
}

// Apply resolves s with r if r belongs to it.
func (r Resolution[T]) Apply(s *Slot[T]) bool {
	if r.Slot != s.name {
		return false
	}
	return s.Resolve(r.Ticket, r.Result)
}
