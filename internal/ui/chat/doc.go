// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main Bubble Tea model for the wrench TUI.

The model owns four panes, switched with Tab and Shift+Tab:

  - Chat: the transcript and the query input
  - Vehicle: make/model/year form, vehicle spec lookup and context selection
  - Diagnostic: trouble code lookup
  - Upload: PDF manual selection and ingestion

# Request Lifecycle

Every user action is tracked by a request.Slot. Submitting invokes the slot
and returns a tea.Cmd that performs the HTTP call through a Gateway on a
separate goroutine. The command reports back with a request.Resolution, which
Update applies to the slot. Resolutions from superseded invocations are
dropped by the slot.

# Files

  - model.go: Model, Options and construction
  - keys.go: key bindings and help
  - messages.go: messages delivered to Update
  - commands.go: tea.Cmd constructors for gateway calls
  - update.go: message and key dispatch
  - panes.go: per-pane submit logic
  - view.go: rendering

# Usage

	m := chat.New(chat.Options{
	    Theme:    styles.NewTheme("auto"),
	    Gateway:  client,
	    Endpoint: endpoint,
	    Vehicles: store,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
*/
package chat
