// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Transcript: ordered, append-only list of messages
//   - Message: role, content, timestamp and optional citations
//   - Source: a retrieved passage (document, page, relevance score)
//   - Role: user or assistant
//
// # Usage
//
//	tr := model.NewTranscript()
//	tr.Append(model.NewUserMessage("Why does my Camry misfire?"))
//	tr.Append(model.NewAssistantMessage(answer, sources))
//	for _, m := range tr.Messages() {
//	    if m.HasCitations() {
//	        for _, s := range m.Sources {
//	            fmt.Println(s.Citation()) // manual.pdf p.12 (0.87)
//	        }
//	    }
//	}
package model
