// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is a local stand-in for the repair assistant backend.
//
// It implements the HTTP contract the client speaks, so the TUI and the
// command line can be used without the hosted service.
//
// # Endpoints
//
//   - GET  /health                                - Status, version and environment
//   - POST /query                                 - Retrieval answer for a question
//   - GET  /diagnostic-codes/{code}               - Diagnostic trouble code record
//   - GET  /vehicle-info/{make}/{model}/{year}    - Vehicle specifications
//   - POST /upload-documents                      - Ingest PDF service manuals
//
// Errors use the body {"detail": "..."}.
//
// # Storage
//
// Uploaded manuals are split into overlapping passages and indexed in a
// SQLite FTS5 table. Re-uploading identical bytes is a no-op. Diagnostic
// codes and vehicle specs come from reference data compiled into the
// binary.
//
// # Key Types
//
//   - Server: HTTP server with the middleware chain
//   - Store: passage store and BM25 search
//   - Catalog: lookup data
package devserver
