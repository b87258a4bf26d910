// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Human-readable rendering shared by ask, repl and the lookups.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/ui/components"
	"github.com/jeranaias/wrench-tui/internal/ui/styles"
)

// newRenderer creates a glamour renderer for the configured theme, or nil
// when rendering is off or glamour fails.
func newRenderer(rt *Runtime) *glamour.TermRenderer {
	if !rt.Render {
		return nil
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(renderWidth())}
	switch strings.ToLower(rt.Config.UI.Theme) {
	case "dark", "light":
		opts = append(opts, glamour.WithStandardStyle(strings.ToLower(rt.Config.UI.Theme)))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		rt.Logger.Debug("markdown renderer unavailable", "error", err)
		return nil
	}
	return r
}

// style applies s only when rendering is on.
func (rt *Runtime) style(s func(...string) string, text string) string {
	if !rt.Render {
		return text
	}
	return s(text)
}

// printAnswer writes the answer, its citations and any suggested actions.
func printAnswer(w io.Writer, rt *Runtime, renderer *glamour.TermRenderer, resp *api.QueryResponse) {
	answer := resp.Answer
	if renderer != nil && rt.Config.UI.RenderMarkdown {
		if out, err := renderer.Render(answer); err == nil {
			answer = strings.Trim(out, "\n")
		}
	}
	fmt.Fprintln(w, answer)

	if len(resp.Sources) > 0 && rt.Config.UI.ShowSources {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rt.style(SectionStyle.Render, "Sources"))
		for _, s := range resp.Sources {
			fmt.Fprintln(w, rt.style(DimStyle.Render, "  - "+s.Citation()))
		}
	}

	if len(resp.SuggestedActions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rt.style(SectionStyle.Render, "Suggested next steps"))
		for _, a := range resp.SuggestedActions {
			fmt.Fprintln(w, "  - "+a)
		}
	}
}

// printDiagnostic writes a trouble code record.
func printDiagnostic(w io.Writer, rt *Runtime, rec *api.DiagnosticRecord) {
	title := rec.Code
	if rec.Name != "" {
		title += " - " + rec.Name
	}
	fmt.Fprintln(w, rt.style(TitleStyle.Render, title))
	if rec.Description != "" {
		fmt.Fprintln(w, WrapText(rec.Description, GetTerminalWidth()-2))
	}

	printList(w, rt, "Symptoms", rec.Symptoms, false)
	printList(w, rt, "Possible causes", rec.PossibleCauses, false)
	printList(w, rt, "Troubleshooting steps", rec.TroubleshootingSteps, true)
}

func printList(w io.Writer, rt *Runtime, title string, items []string, numbered bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rt.style(SectionStyle.Render, title))
	for i, item := range items {
		if numbered {
			fmt.Fprintf(w, "  %d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}

// printSpecs writes the vehicle payload as indented JSON, highlighted on a
// terminal.
func printSpecs(w io.Writer, rt *Runtime, title string, specs *api.VehicleSpecs) {
	fmt.Fprintln(w, rt.style(TitleStyle.Render, title))
	pretty := specs.Pretty()
	if rt.Render {
		pretty = components.HighlightJSON(pretty, styles.NewTheme(rt.Config.UI.Theme).ChromaStyle())
	}
	fmt.Fprintln(w, strings.TrimRight(pretty, "\n"))
}
