// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across wrench.
//
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//   - TruncateWidth, PadRight, StringWidth: terminal-column aware text helpers
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
package util
