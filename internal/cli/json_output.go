// json_output.go - Machine-readable output for --json.
//
// Every command emits the same envelope so scripts can check "success"
// before reading "data".
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// JSONResponse is the envelope for all --json output.
type JSONResponse struct {
	Success bool `json:"success"`

	// Data contains the command-specific payload
	Data interface{} `json:"data"`

	// Error is null on success
	Error *string `json:"error"`

	// Timestamp is RFC3339 UTC
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// AskData is the data block of the ask command.
type AskData struct {
	Query   string             `json:"query"`
	Vehicle *vehicle.Context   `json:"vehicle,omitempty"`
	Answer  *api.QueryResponse `json:"response"`
}

// HealthData is the data block of the health command.
type HealthData struct {
	BaseURL string            `json:"base_url"`
	Online  bool              `json:"online"`
	Status  *api.HealthStatus `json:"status,omitempty"`
}

// UploadData is the data block of the upload command.
type UploadData struct {
	Files  []string          `json:"files"`
	Result *api.UploadResult `json:"result"`
}

// ConfigPathData is the data block of config path.
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}
