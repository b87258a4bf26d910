// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	NextPane     key.Binding
	PrevPane     key.Binding
	Submit       key.Binding
	FieldUp      key.Binding
	FieldDown    key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	EditURL      key.Binding
	CheckHealth  key.Binding
	ClearVehicle key.Binding
	ClearFiles   key.Binding
	Browse       key.Binding
	Upload       key.Binding
	Cancel       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous pane"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		FieldUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous field"),
		),
		FieldDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next field"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "scroll down"),
		),
		EditURL: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "backend URL"),
		),
		CheckHealth: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "check backend"),
		),
		ClearVehicle: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "clear vehicle"),
		),
		ClearFiles: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "clear selection"),
		),
		Browse: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "browse files"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "upload"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the collapsed help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Submit, k.EditURL, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped by column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Submit, k.Cancel},
		{k.FieldUp, k.FieldDown, k.ScrollUp, k.ScrollDown},
		{k.EditURL, k.CheckHealth, k.ClearVehicle},
		{k.Browse, k.Upload, k.ClearFiles, k.Help, k.Quit},
	}
}
