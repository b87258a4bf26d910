// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source is a retrieved passage cited by an answer.
// Every field except Text may be missing from the backend response.
type Source struct {
	Text   string   `json:"text"`
	Source string   `json:"source,omitempty"`
	Page   *int     `json:"page,omitempty"`
	Score  *float64 `json:"score,omitempty"`
}

// ScoreMissing is shown in place of an absent relevance score.
const ScoreMissing = "—"

// FormatScore renders the score with two decimals, or ScoreMissing.
func (s Source) FormatScore() string {
	if s.Score == nil {
		return ScoreMissing
	}
	return fmt.Sprintf("%.2f", *s.Score)
}

// Citation renders the source as "manual.pdf p.12 (0.87)".
// A missing page is left out; a missing document name becomes "unknown source".
func (s Source) Citation() string {
	name := strings.TrimSpace(s.Source)
	if name == "" {
		name = "unknown source"
	}
	if s.Page != nil {
		return fmt.Sprintf("%s p.%d (%s)", name, *s.Page, s.FormatScore())
	}
	return fmt.Sprintf("%s (%s)", name, s.FormatScore())
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one transcript entry. Messages are values and are never
// modified after they are appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant reply with its citations.
// The sources keep the order the backend returned them in.
func NewAssistantMessage(content string, sources []Source) Message {
	msg := NewMessage(RoleAssistant, content)
	if len(sources) > 0 {
		msg.Sources = make([]Source, len(sources))
		copy(msg.Sources, sources)
	}
	return msg
}

// HasCitations reports whether the message should render a source list.
// Only assistant messages with at least one source do.
func (m Message) HasCitations() bool {
	return m.Role == RoleAssistant && len(m.Sources) > 0
}

// Preview returns the first line of the content, cut to maxLen runes.
func (m Message) Preview(maxLen int) string {
	line := m.Content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if maxLen > 3 && len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return line
}
