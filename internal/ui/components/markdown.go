// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders answer text with glamour. The renderer is rebuilt only
// when the wrap width changes.
type Markdown struct {
	style    string
	width    int
	enabled  bool
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer for a glamour standard style ("dark",
// "light", "notty"). When enabled is false Render returns the input.
func NewMarkdown(style string, width int, enabled bool) *Markdown {
	m := &Markdown{style: style, enabled: enabled}
	m.SetWidth(width)
	return m
}

// SetWidth changes the word-wrap width.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == m.width && m.renderer != nil {
		return
	}
	m.width = width
	if !m.enabled {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// Render returns the rendered markdown, or content unchanged if rendering
// is disabled or fails.
func (m *Markdown) Render(content string) string {
	if m == nil || !m.enabled || m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
