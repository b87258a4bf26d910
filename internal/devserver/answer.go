// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// answer.go - Retrieval-only answers.
//
// The development backend has no language model. Answers summarize the
// retrieved passages and point at the lookups that can help next.
package devserver

import (
	"fmt"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

const (
	noModelNotice = "AI key not configured. Based on retrieved documents, review the referenced sections and follow manufacturer troubleshooting steps."
	noPassages    = "No matching passages were found in the uploaded manuals. Upload a service manual for this vehicle and ask again."

	excerptLength = 280
)

// BuildAnswer assembles the query response from retrieved passages.
func BuildAnswer(query string, v *vehicle.Context, passages []Passage, catalog *Catalog) *api.QueryResponse {
	var sb strings.Builder
	if v != nil {
		fmt.Fprintf(&sb, "**Vehicle:** %s\n\n", v.String())
	}

	sources := make([]model.Source, 0, len(passages))
	if len(passages) == 0 {
		sb.WriteString(noPassages)
	} else {
		sb.WriteString(noModelNotice)
		sb.WriteString("\n\n")
		for _, p := range passages {
			fmt.Fprintf(&sb, "- %s (%s, p. %d)\n", excerpt(p.Text, excerptLength), p.Document, p.Page)
			sources = append(sources, p.Source())
		}
	}

	return &api.QueryResponse{
		Answer:           strings.TrimRight(sb.String(), "\n"),
		Sources:          sources,
		SuggestedActions: suggestActions(query, v, len(passages) > 0, catalog),
	}
}

// suggestActions offers lookups for codes mentioned in the query and the
// steps that would improve the answer.
func suggestActions(query string, v *vehicle.Context, found bool, catalog *Catalog) []string {
	var actions []string
	for _, code := range vehicle.FindCodes(query) {
		if rec, ok := catalog.Diagnostic(code); ok {
			actions = append(actions, fmt.Sprintf("Look up %s (%s)", rec.Code, rec.Name))
		}
	}
	if v == nil {
		actions = append(actions, "Set a vehicle for more specific answers")
	} else if _, ok := catalog.Vehicle(v.Make, v.Model, v.Year); ok {
		actions = append(actions, "Review the "+v.String()+" specifications")
	}
	if !found {
		actions = append(actions, "Upload a service manual")
	}
	return actions
}

// excerpt flattens text onto one line and cuts it at a word boundary.
func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
