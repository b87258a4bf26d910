// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable view pieces of the wrench TUI.
//
// Components are pure renderers plus one animated Bubble Tea model (Spinner).
// They take a *styles.Theme and return strings; none of them own request or
// transcript state.
//
//   - Spinner: ASCII loading indicator with a message
//   - Markdown: glamour rendering of answers with a plain-text fallback
//   - HighlightJSON: chroma highlighting for vehicle spec payloads
//   - StatusBar: width-aware footer with left/right segments
//   - Tabs: pane selector for the header
//   - Transcript: chat history with citations and the empty-state hint
package components
