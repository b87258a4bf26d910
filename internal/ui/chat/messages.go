// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/request"
)

// =============================================================================
// SLOT NAMES
// =============================================================================

// Slot names. They tag resolutions so Update can route them.
const (
	SlotChat       = "chat"
	SlotVehicle    = "vehicle"
	SlotDiagnostic = "diagnostic"
	SlotUpload     = "upload"
	SlotHealth     = "health"
)

// =============================================================================
// RESOLUTION MESSAGES
// =============================================================================

// QueryResolvedMsg reports the outcome of a chat query.
type QueryResolvedMsg = request.Resolution[*api.QueryResponse]

// VehicleResolvedMsg reports the outcome of a vehicle spec lookup.
type VehicleResolvedMsg = request.Resolution[*api.VehicleSpecs]

// DiagnosticResolvedMsg reports the outcome of a trouble code lookup.
type DiagnosticResolvedMsg = request.Resolution[*api.DiagnosticRecord]

// UploadResolvedMsg reports the outcome of a manual upload.
type UploadResolvedMsg = request.Resolution[*api.UploadResult]

// HealthResolvedMsg reports the outcome of a backend health check.
type HealthResolvedMsg = request.Resolution[*api.HealthStatus]

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================

// BaseURLChangedMsg is sent by the program owner when the backend URL changes
// outside the TUI, for example after a config file reload.
type BaseURLChangedMsg struct {
	URL string
}

// NoticeMsg shows a transient line in the status bar.
type NoticeMsg struct {
	Text    string
	IsError bool
}
