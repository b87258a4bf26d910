// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT VIEW
// =============================================================================

// TranscriptOptions controls how the history is drawn.
type TranscriptOptions struct {
	Width       int
	ShowSources bool
	Markdown    *Markdown // nil renders plain text
}

// Transcript renders the whole chat history in insertion order, or the
// empty-state hint when there is nothing yet.
func Transcript(theme *styles.Theme, msgs []model.Message, opts TranscriptOptions) string {
	if len(msgs) == 0 {
		return theme.Placeholder.Render(model.EmptyTranscriptHint)
	}

	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, Message(theme, m, opts))
	}
	return strings.Join(blocks, "\n\n")
}

// Message renders one transcript entry with its role label and, for
// assistant messages with sources, the citation list.
func Message(theme *styles.Theme, m model.Message, opts TranscriptOptions) string {
	width := opts.Width - 2 // left border and padding
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	b.WriteString(theme.RoleLabel.Render(m.Role.DisplayName()))
	b.WriteString("\n")

	switch m.Role {
	case model.RoleAssistant:
		body := m.Content
		if opts.Markdown != nil {
			body = opts.Markdown.Render(body)
		}
		b.WriteString(theme.AssistantMessage.Width(width).Render(body))
		if opts.ShowSources && m.HasCitations() {
			b.WriteString("\n")
			b.WriteString(Citations(theme, m.Sources))
		}
	default:
		b.WriteString(theme.UserMessage.Width(width).Render(m.Content))
	}
	return b.String()
}

// Citations renders one "source p.N (score)" line per source, in order.
func Citations(theme *styles.Theme, sources []model.Source) string {
	lines := make([]string, len(sources))
	for i, s := range sources {
		lines[i] = theme.Citation.Render("  - " + s.Citation())
	}
	return strings.Join(lines, "\n")
}
