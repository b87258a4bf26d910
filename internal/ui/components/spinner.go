// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wrench-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading indicator shown while a request is pending.
// One spinner is shared by all panes; it ticks while any slot is pending.
type Spinner struct {
	spinner   spinner.Model
	theme     *styles.Theme
	startTime time.Time
	active    bool
}

// NewSpinner creates an ASCII-compatible spinner.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return Spinner{spinner: s, theme: theme}
}

// Start activates the spinner. It returns the first tick only when the
// spinner was idle, so overlapping requests do not double the tick rate.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.active
}

// Update advances the animation. Ticks arriving after Stop are dropped,
// which ends the tick loop.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner with a message and the elapsed time.
func (s Spinner) View(message string) string {
	if !s.active {
		return ""
	}
	out := s.theme.Spinner.Render(s.spinner.View()) + " " + message
	if !s.startTime.IsZero() {
		out += s.theme.Hint.Render(" (" + formatElapsed(time.Since(s.startTime)) + ")")
	}
	return out
}

func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
