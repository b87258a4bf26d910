// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the wrench TUI.

# Colors (colors.go)

Orange is the brand accent (active tab, prompts), Steel marks assistant
output and focused panes, Emerald and Rose carry success/online and
error/offline. Every color is a lipgloss.AdaptiveColor.

Status indicators ([OK], [X], [..], [*]) accompany colors so state is
readable on monochrome terminals.

# Theme (theme.go)

NewTheme builds every lipgloss style once. The mode comes from ui.theme in
the config: "auto" asks termenv about the background, "dark" and "light"
force it. GlamourStyle and ChromaStyle pick matching markdown and syntax
highlighting styles.

	theme := styles.NewTheme(cfg.UI.Theme)
	fmt.Println(theme.ErrorLine.Render("Lookup failed"))
*/
package styles
