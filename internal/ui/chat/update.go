// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all messages. It runs on the Bubble Tea event loop, so slot
// and transcript mutations never race.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case QueryResolvedMsg:
		return m.applyQuery(msg)

	case VehicleResolvedMsg:
		return m.applyVehicle(msg)

	case DiagnosticResolvedMsg:
		return m.applyDiagnostic(msg)

	case UploadResolvedMsg:
		return m.applyUpload(msg)

	case HealthResolvedMsg:
		if !msg.Apply(m.healthSlot) {
			return m, nil
		}
		if _, failed := m.healthSlot.State().Message(); failed {
			m.logger.Debug("backend health check failed", "url", m.baseURL())
		}
		return m, nil

	case BaseURLChangedMsg:
		m.notice = NoticeMsg{Text: "Backend URL changed to " + msg.URL}
		return m, m.checkHealth()

	case NoticeMsg:
		m.notice = msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Directory listings for the file browser and cursor blinks for the
	// focused input.
	var pickerCmd tea.Cmd
	m.picker, pickerCmd = m.picker.Update(msg)
	inputCmd := m.updateFocusedInput(msg)
	return m, tea.Batch(pickerCmd, inputCmd)
}

// updateFocusedInput forwards msg to the text input that has focus.
func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.editingURL:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case m.pane == PaneVehicle:
		m.vehicleInputs[m.vehicleFocus], cmd = m.vehicleInputs[m.vehicleFocus].Update(msg)
	case m.pane == PaneDiagnostic:
		m.codeInput, cmd = m.codeInput.Update(msg)
	case m.pane == PaneUpload:
		m.pathInput, cmd = m.pathInput.Update(msg)
	default:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.editingURL {
		return m.handleURLKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.EditURL):
		m.editingURL = true
		m.urlErr = ""
		if m.endpoint != nil {
			m.urlInput.SetValue(m.endpoint.BaseURL())
		}
		m.urlInput.CursorEnd()
		cmd := m.urlInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CheckHealth):
		return m, m.checkHealth()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	if m.pane == PaneUpload && m.browsing {
		return m.handleBrowseKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextPane):
		return m.focusPane((m.pane + 1) % paneCount)
	case key.Matches(msg, m.keys.PrevPane):
		return m.focusPane((m.pane + paneCount - 1) % paneCount)
	}

	switch m.pane {
	case PaneVehicle:
		return m.handleVehicleKey(msg)
	case PaneDiagnostic:
		return m.handleDiagnosticKey(msg)
	case PaneUpload:
		return m.handleUploadKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) handleURLKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editingURL = false
		m.urlInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.endpoint == nil {
			m.urlErr = "backend URL cannot be changed"
			return m, nil
		}
		if err := m.endpoint.SetBaseURL(m.urlInput.Value()); err != nil {
			m.urlErr = err.Error()
			return m, nil
		}
		m.editingURL = false
		m.urlInput.Blur()
		m.notice = NoticeMsg{Text: "Backend URL set to " + m.endpoint.BaseURL()}
		m.logger.Info("backend URL changed", "url", m.endpoint.BaseURL())
		return m, m.checkHealth()
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

// focusPane switches panes and moves keyboard focus to the pane's input.
func (m Model) focusPane(p Pane) (tea.Model, tea.Cmd) {
	m.pane = p
	m.chatInput.Blur()
	m.codeInput.Blur()
	m.pathInput.Blur()
	for i := range m.vehicleInputs {
		m.vehicleInputs[i].Blur()
	}

	switch p {
	case PaneVehicle:
		return m, m.vehicleInputs[m.vehicleFocus].Focus()
	case PaneDiagnostic:
		cmd := m.codeInput.Focus()
		return m, cmd
	case PaneUpload:
		cmd := m.pathInput.Focus()
		return m, cmd
	default:
		cmd := m.chatInput.Focus()
		return m, cmd
	}
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submitChat()
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m Model) handleVehicleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submitVehicle()

	case key.Matches(msg, m.keys.ClearVehicle):
		m.vehicles.Clear()
		m.notice = NoticeMsg{Text: "Vehicle context cleared"}
		return m, nil

	case key.Matches(msg, m.keys.FieldUp):
		return m.focusField((m.vehicleFocus + fieldCount - 1) % fieldCount)

	case key.Matches(msg, m.keys.FieldDown):
		return m.focusField((m.vehicleFocus + 1) % fieldCount)
	}

	var cmd tea.Cmd
	m.vehicleInputs[m.vehicleFocus], cmd = m.vehicleInputs[m.vehicleFocus].Update(msg)
	if m.vehicleFocus == fieldMake {
		m.vehicleInputs[fieldModel].SetSuggestions(m.modelSuggestions())
	}
	return m, cmd
}

func (m Model) focusField(i int) (tea.Model, tea.Cmd) {
	m.vehicleInputs[m.vehicleFocus].Blur()
	m.vehicleFocus = i
	return m, m.vehicleInputs[i].Focus()
}

func (m Model) handleDiagnosticKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		return m.submitDiagnostic()
	}
	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return m, cmd
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Upload):
		return m.submitUpload()

	case key.Matches(msg, m.keys.Submit):
		if m.pathInput.Value() == "" {
			return m.submitUpload()
		}
		m.addFile(m.pathInput.Value())
		m.pathInput.Reset()
		return m, nil

	case key.Matches(msg, m.keys.ClearFiles):
		m.selection = nil
		return m, nil

	case key.Matches(msg, m.keys.Browse):
		m.browsing = true
		m.pathInput.Blur()
		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// handleBrowseKey routes keys to the file browser while it is open.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Browse):
		m.browsing = false
		cmd := m.pathInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Upload):
		return m.submitUpload()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.addFile(path)
	}
	return m, cmd
}
