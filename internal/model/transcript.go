// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// EmptyTranscriptHint is shown while the transcript has no messages.
const EmptyTranscriptHint = "Ask about a repair or upload a manual."

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered, append-only chat history.
// Insertion order is display order; nothing is ever removed or edited.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{messages: make([]Message, 0)}
}

// Append adds a message to the end. It is the only mutator.
func (t *Transcript) Append(msg Message) {
	if len(msg.Sources) > 0 {
		sources := make([]Source, len(msg.Sources))
		copy(sources, msg.Sources)
		msg.Sources = sources
	}
	t.messages = append(t.messages, msg)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty reports whether the placeholder should be shown.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// Messages returns a copy of the history in display order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// CountByRole returns how many messages a role has contributed.
func (t *Transcript) CountByRole(role Role) int {
	n := 0
	for _, m := range t.messages {
		if m.Role == role {
			n++
		}
	}
	return n
}
