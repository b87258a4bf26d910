// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wrench-tui/internal/ui/styles"
)

// Tabs renders the pane selector with the active tab highlighted.
func Tabs(theme *styles.Theme, names []string, active int) string {
	rendered := make([]string, len(names))
	for i, name := range names {
		if i == active {
			rendered[i] = theme.TabActive.Render(name)
		} else {
			rendered[i] = theme.Tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// HealthBadge renders the backend indicator shown in the header.
// version may be empty.
func HealthBadge(theme *styles.Theme, online bool, version string) string {
	if !online {
		return theme.Offline.Render(styles.StatusIndicators.Offline + " offline")
	}
	label := styles.StatusIndicators.Online + " online"
	if version != "" {
		label += " v" + version
	}
	return theme.Online.Render(label)
}
