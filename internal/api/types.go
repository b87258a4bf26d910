// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// DefaultTopK is the number of passages requested per query.
const DefaultTopK = 4

// =============================================================================
// QUERY
// =============================================================================

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query   string           `json:"query"`
	TopK    int              `json:"top_k"`
	Vehicle *vehicle.Context `json:"vehicle,omitempty"`
}

// QueryResponse is the answer to a chat query.
type QueryResponse struct {
	Answer           string         `json:"answer"`
	Sources          []model.Source `json:"sources"`
	SuggestedActions []string       `json:"suggested_actions,omitempty"`
}

// =============================================================================
// DIAGNOSTIC CODES
// =============================================================================

// DiagnosticRecord describes one diagnostic trouble code.
type DiagnosticRecord struct {
	Code                 string   `json:"code"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Symptoms             []string `json:"symptoms"`
	PossibleCauses       []string `json:"possible_causes"`
	TroubleshootingSteps []string `json:"troubleshooting_steps"`
}

// =============================================================================
// VEHICLE SPECS
// =============================================================================

// VehicleSpecs is the untyped vehicle-info payload.
type VehicleSpecs struct {
	Raw json.RawMessage
}

// View returns the part of the payload worth showing: the "specs" field when
// it is present and truthy, otherwise the whole payload.
func (v VehicleSpecs) View() json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v.Raw, &obj); err == nil {
		if specs, ok := obj["specs"]; ok && truthy(specs) {
			return specs
		}
	}
	return v.Raw
}

// Pretty returns View indented with two spaces.
func (v VehicleSpecs) Pretty() string {
	view := v.View()
	var buf bytes.Buffer
	if err := json.Indent(&buf, view, "", "  "); err != nil {
		return string(view)
	}
	return buf.String()
}

// MarshalJSON writes the raw payload unchanged.
func (v VehicleSpecs) MarshalJSON() ([]byte, error) {
	if len(v.Raw) == 0 {
		return []byte("null"), nil
	}
	return v.Raw, nil
}

// truthy follows the usual JSON-ish notion: null, false, 0 and "" are falsy.
func truthy(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "false", `""`:
		return false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0
	}
	return true
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadResult is the ingestion summary returned by the backend.
type UploadResult struct {
	IngestedCount int      `json:"ingested_count"`
	Files         []string `json:"files"`
}

// Summary renders "Ingested 37 chunks from a.pdf, b.pdf".
func (r UploadResult) Summary() string {
	return fmt.Sprintf("Ingested %d chunks from %s", r.IngestedCount, strings.Join(r.Files, ", "))
}

// =============================================================================
// HEALTH
// =============================================================================

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// OK reports whether the backend considers itself healthy.
func (h HealthStatus) OK() bool {
	return h.Status == "ok"
}
