// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// =============================================================================
// CHAT
// =============================================================================

// pendingQueryNotice is shown when a question is submitted before the
// previous answer has arrived.
const pendingQueryNotice = "Still waiting for the previous answer; your question is kept in the input"

// submitChat appends the user message and sends the query. Whitespace input
// is ignored. While a query is in flight the input is kept and a notice says
// why nothing was sent.
func (m Model) submitChat() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.chatInput.Value())
	if text == "" {
		return m, nil
	}
	if m.chatSlot.Pending() {
		m.notice = NoticeMsg{Text: pendingQueryNotice}
		return m, nil
	}

	ticket := m.chatSlot.Invoke()
	m.transcript.Append(model.NewUserMessage(text))
	m.chatInput.Reset()
	m.suggestions = nil
	m.refreshTranscript()

	m.logger.Debug("query submitted", "ticket", ticket, "length", len(text))
	spin := m.syncSpinner()
	return m, tea.Batch(queryCmd(m.gateway, ticket, text), spin)
}

func (m Model) applyQuery(msg QueryResolvedMsg) (tea.Model, tea.Cmd) {
	if !msg.Apply(m.chatSlot) {
		m.logger.Debug("stale resolution dropped", "slot", msg.Slot, "ticket", msg.Ticket)
		return m, nil
	}
	if resp, ok := m.chatSlot.State().Value(); ok && resp != nil {
		m.transcript.Append(model.NewAssistantMessage(resp.Answer, resp.Sources))
		m.suggestions = resp.SuggestedActions
		m.refreshTranscript()
	}
	cmd := m.syncSpinner()
	return m, cmd
}

// =============================================================================
// VEHICLE
// =============================================================================

// submitVehicle looks up specs for the form's vehicle. Empty make or model is
// ignored; a bad year fails the slot without a request.
func (m Model) submitVehicle() (tea.Model, tea.Cmd) {
	mk := m.vehicleInputs[fieldMake].Value()
	mdl := m.vehicleInputs[fieldModel].Value()
	if strings.TrimSpace(mk) == "" || strings.TrimSpace(mdl) == "" {
		return m, nil
	}

	v, err := vehicle.New(mk, mdl, m.vehicleInputs[fieldYear].Value())
	if err != nil {
		m.vehicleSlot.Fail(err)
		cmd := m.syncSpinner()
		return m, cmd
	}

	ticket := m.vehicleSlot.Invoke()
	m.vehicleReq = v
	spin := m.syncSpinner()
	return m, tea.Batch(vehicleCmd(m.gateway, ticket, v.Make, v.Model, v.Year), spin)
}

// applyVehicle makes the looked-up vehicle the query context on success.
func (m Model) applyVehicle(msg VehicleResolvedMsg) (tea.Model, tea.Cmd) {
	if !msg.Apply(m.vehicleSlot) {
		return m, nil
	}
	if _, ok := m.vehicleSlot.State().Value(); ok {
		m.vehicles.Set(m.vehicleReq)
		m.notice = NoticeMsg{Text: "Vehicle context set: " + m.vehicleReq.String()}
		m.logger.Info("vehicle context set", "vehicle", m.vehicleReq.String())
	}
	cmd := m.syncSpinner()
	return m, cmd
}

func (m Model) modelSuggestions() []string {
	return vehicle.ModelSuggestions(m.vehicleInputs[fieldMake].Value())
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// submitDiagnostic looks up the normalized code. Empty input is ignored.
func (m Model) submitDiagnostic() (tea.Model, tea.Cmd) {
	code := vehicle.NormalizeCode(m.codeInput.Value())
	if code == "" {
		return m, nil
	}
	m.codeInput.SetValue(code)

	ticket := m.diagSlot.Invoke()
	spin := m.syncSpinner()
	return m, tea.Batch(diagnosticCmd(m.gateway, ticket, code), spin)
}

func (m Model) applyDiagnostic(msg DiagnosticResolvedMsg) (tea.Model, tea.Cmd) {
	msg.Apply(m.diagSlot)
	cmd := m.syncSpinner()
	return m, cmd
}

// =============================================================================
// UPLOAD
// =============================================================================

// addFile adds a PDF to the selection. Duplicates are ignored.
func (m *Model) addFile(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		m.notice = NoticeMsg{Text: "Only PDF files can be uploaded: " + filepath.Base(path), IsError: true}
		return
	}
	for _, p := range m.selection {
		if p == path {
			return
		}
	}
	m.selection = append(m.selection, path)
}

// submitUpload uploads the selection. An empty selection is ignored.
func (m Model) submitUpload() (tea.Model, tea.Cmd) {
	if len(m.selection) == 0 {
		return m, nil
	}
	paths := m.Selection()
	ticket := m.uploadSlot.Invoke()
	m.logger.Debug("upload submitted", "ticket", ticket, "files", len(paths))
	spin := m.syncSpinner()
	return m, tea.Batch(uploadCmd(m.gateway, ticket, paths), spin)
}

// applyUpload clears the selection once the latest upload resolves, whether
// it succeeded or not.
func (m Model) applyUpload(msg UploadResolvedMsg) (tea.Model, tea.Cmd) {
	if !msg.Apply(m.uploadSlot) {
		return m, nil
	}
	m.selection = nil
	cmd := m.syncSpinner()
	return m, cmd
}

// =============================================================================
// BACKEND
// =============================================================================

func (m Model) baseURL() string {
	if m.endpoint == nil {
		return ""
	}
	return m.endpoint.BaseURL()
}
