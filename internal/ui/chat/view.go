// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/request"
	"github.com/jeranaias/wrench-tui/internal/ui/components"
	"github.com/jeranaias/wrench-tui/internal/ui/styles"
	"github.com/jeranaias/wrench-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	var body string
	switch m.pane {
	case PaneVehicle:
		body = m.renderVehiclePane()
	case PaneDiagnostic:
		body = m.renderDiagnosticPane()
	case PaneUpload:
		body = m.renderUploadPane()
	default:
		body = m.renderChatPane()
	}

	parts := []string{m.renderHeader(), "", body}
	if m.editingURL {
		parts = append(parts, "", m.renderURLPrompt())
	}
	if m.showHelp {
		parts = append(parts, "", m.help.View(m.keys))
	}
	parts = append(parts, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader shows the brand, the pane tabs, the vehicle context and the
// backend health.
func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("wrench")
	tabs := components.Tabs(m.theme, paneNames, int(m.pane))

	ctx := "No vehicle"
	if v, ok := m.vehicles.Get(); ok {
		ctx = v.String()
	}
	right := m.theme.Value.Render(ctx) + "  " + m.renderHealth()

	left := lipgloss.JoinHorizontal(lipgloss.Center, brand, " ", tabs)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHealth() string {
	st := m.healthSlot.State()
	switch {
	case st.IsPending():
		return m.theme.Hint.Render(styles.StatusIndicators.Pending + " checking")
	case st.IsIdle():
		return ""
	}
	h, ok := st.Value()
	if !ok || h == nil || !h.OK() {
		return components.HealthBadge(m.theme, false, "")
	}
	return components.HealthBadge(m.theme, true, h.Version)
}

// =============================================================================
// PANES
// =============================================================================

func (m Model) renderChatPane() string {
	lines := []string{m.viewport.View()}

	if len(m.suggestions) > 0 {
		lines = append(lines, m.theme.Hint.Render("Suggested: "+strings.Join(m.suggestions, " | ")))
	}
	if line := stateLine(m.theme, m.chatSlot.State()); line != "" {
		lines = append(lines, line)
	}
	lines = append(lines, m.chatInput.View())
	return strings.Join(lines, "\n")
}

func (m Model) renderVehiclePane() string {
	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("Vehicle"))
	b.WriteString("\n\n")
	for i, in := range m.vehicleInputs {
		marker := "  "
		if i == m.vehicleFocus {
			marker = m.theme.FieldActive.Render("> ")
		}
		b.WriteString(marker + in.View() + "\n")
	}

	b.WriteString("\n")
	if v, ok := m.vehicles.Get(); ok {
		b.WriteString(m.theme.Label.Render("Context: ") + m.theme.Value.Render(v.String()))
	} else {
		b.WriteString(m.theme.Label.Render("Context: ") + m.theme.Hint.Render("none (queries are sent without a vehicle)"))
	}
	b.WriteString("\n")

	st := m.vehicleSlot.State()
	if line := stateLine(m.theme, st); line != "" {
		b.WriteString("\n" + line + "\n")
	}
	if specs, ok := st.Value(); ok && specs != nil {
		b.WriteString("\n" + m.theme.SectionTitle.Render("Specifications") + "\n")
		b.WriteString(components.HighlightJSON(specs.Pretty(), m.theme.ChromaStyle()))
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.theme.Hint.Render("Enter: look up and set context | up/down: field | C-x: clear context | C-t: accept suggestion"))
	return b.String()
}

func (m Model) renderDiagnosticPane() string {
	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("Diagnostic code lookup"))
	b.WriteString("\n\n")
	b.WriteString(m.codeInput.View())
	b.WriteString("\n")

	st := m.diagSlot.State()
	if line := stateLine(m.theme, st); line != "" {
		b.WriteString("\n" + line + "\n")
	}
	if rec, ok := st.Value(); ok && rec != nil {
		b.WriteString("\n" + renderDiagnostic(m.theme, rec, m.contentWidth()))
	}
	return b.String()
}

// renderDiagnostic formats a trouble code record.
func renderDiagnostic(theme *styles.Theme, rec *api.DiagnosticRecord, width int) string {
	var b strings.Builder
	title := rec.Code
	if rec.Name != "" {
		title += " - " + rec.Name
	}
	b.WriteString(theme.SectionTitle.Render(title))
	b.WriteString("\n")
	if rec.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(rec.Description))
		b.WriteString("\n")
	}

	sections := []struct {
		title string
		items []string
	}{
		{"Symptoms", rec.Symptoms},
		{"Possible causes", rec.PossibleCauses},
		{"Troubleshooting steps", rec.TroubleshootingSteps},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		b.WriteString("\n" + theme.RoleLabel.Render(sec.title) + "\n")
		for i, item := range sec.items {
			bullet := "  - "
			if sec.title == "Troubleshooting steps" {
				bullet = fmt.Sprintf("  %d. ", i+1)
			}
			b.WriteString(bullet + item + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderUploadPane() string {
	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("Upload service manuals"))
	b.WriteString("\n\n")

	if m.browsing {
		b.WriteString(m.picker.View())
		b.WriteString("\n")
	} else {
		b.WriteString(m.pathInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.theme.RoleLabel.Render(fmt.Sprintf("Selected (%d):", len(m.selection))) + "\n")
	if len(m.selection) == 0 {
		b.WriteString(m.theme.Hint.Render("  no files selected") + "\n")
	}
	for _, p := range m.selection {
		b.WriteString("  " + filepath.Base(p) + m.theme.Hint.Render("  "+p) + "\n")
	}

	st := m.uploadSlot.State()
	if res, ok := st.Value(); ok && res != nil {
		b.WriteString("\n" + m.theme.SuccessLine.Render(styles.StatusIndicators.Success+" "+res.Summary()) + "\n")
	} else if line := stateLine(m.theme, st); line != "" {
		b.WriteString("\n" + line + "\n")
	}

	b.WriteString("\n" + m.theme.Hint.Render("Enter: add path | C-o: browse | C-s: upload | C-x: clear selection"))
	return b.String()
}

// stateLine renders the pending or failure line of a slot. Success is
// rendered by each pane.
func stateLine[T any](theme *styles.Theme, st request.State[T]) string {
	if st.IsPending() {
		return theme.Hint.Render(styles.StatusIndicators.Pending + " working...")
	}
	if msg, failed := st.Message(); failed {
		return theme.ErrorLine.Render(styles.StatusIndicators.Error + " " + msg)
	}
	return ""
}

// =============================================================================
// FOOTER
// =============================================================================

func (m Model) renderURLPrompt() string {
	out := m.urlInput.View()
	if m.urlErr != "" {
		out += "\n" + m.theme.ErrorLine.Render(m.urlErr)
	}
	return out + "\n" + m.theme.Hint.Render("Enter: apply | Esc: cancel")
}

func (m Model) renderStatusBar() string {
	left := []string{util.TruncateWidth(m.baseURL(), 40)}
	if m.notice.Text != "" {
		if m.notice.IsError {
			left = append(left, m.theme.ErrorLine.Render(m.notice.Text))
		} else {
			left = append(left, m.notice.Text)
		}
	}

	right := components.Shortcut(m.theme, "F1", "help")
	if m.spinner.IsActive() {
		right = m.spinner.View("waiting for backend")
	}

	return components.StatusBar{Left: left, Right: right, Width: m.width}.Render(m.theme)
}
