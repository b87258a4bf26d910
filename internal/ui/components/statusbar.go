// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wrench-tui/internal/ui/styles"
	"github.com/jeranaias/wrench-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the single-line footer. Left segments are dropped from the
// end when the bar is too narrow; the right side is kept whole when it fits.
type StatusBar struct {
	Left  []string
	Right string
	Width int
}

const segmentSep = " | "

// Render lays out the bar to exactly Width columns of text.
func (b StatusBar) Render(theme *styles.Theme) string {
	inner := b.Width - 2 // StatusBar style pads one column each side
	if inner <= 0 {
		return ""
	}

	right := b.Right
	if lipgloss.Width(right) > inner {
		right = ""
	}
	room := inner - lipgloss.Width(right)
	if right != "" {
		room-- // keep one space between the sides
	}

	left := ""
	for _, seg := range b.Left {
		candidate := seg
		if left != "" {
			candidate = left + segmentSep + seg
		}
		if lipgloss.Width(candidate) > room {
			if left == "" {
				left = util.TruncateWidth(seg, room)
			}
			break
		}
		left = candidate
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

// Shortcut renders one "key desc" hint.
func Shortcut(theme *styles.Theme, key, desc string) string {
	return theme.ShortcutKey.Render(key) + " " + theme.ShortcutDesc.Render(desc)
}
