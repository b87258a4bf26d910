// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// text.go - Page text extraction and chunking for uploaded manuals.
package devserver

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

const (
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize = 1200
	// ChunkOverlap is how much of the previous chunk each chunk repeats.
	ChunkOverlap = 150
)

// chunkSeparators are tried in order when looking for a place to cut.
var chunkSeparators = []string{"\n\n", "\n", ". ", ".", " "}

// Chunk is one indexed passage. Pages are numbered from 1.
type Chunk struct {
	Page int
	Text string
}

// =============================================================================
// EXTRACTION
// =============================================================================

var (
	blankRe = regexp.MustCompile(`\n{3,}`)
	spaceRe = regexp.MustCompile(`[ \t]+`)
)

// ExtractPages returns the text of each page of a manual. PDFs are read
// page by page through the document's page tree, so a page drawn from
// several content streams stays one page. Content that is not a readable
// PDF is treated as plain text with form feeds separating pages.
func ExtractPages(content []byte) []string {
	var pages []string
	if bytes.HasPrefix(bytes.TrimLeft(content, " \t\r\n"), []byte("%PDF-")) {
		if pp, err := pdfPages(content); err == nil {
			pages = pp
		}
	}
	if pages == nil {
		pages = strings.Split(printable(string(content)), "\f")
	}

	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, NormalizeText(p))
	}
	return out
}

// pdfPages returns the plain text of every page in document order. Pages
// without text come back empty so later page numbers stay aligned.
func pdfPages(content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	n := r.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, printable(text))
	}
	return pages, nil
}

// printable drops invalid UTF-8 and control characters other than line
// breaks, tabs and form feeds.
func printable(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t', r == '\f':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r), r == utf8.RuneError:
			return -1
		}
		return r
	}, s)
}

// NormalizeText applies NFKC and tidies whitespace so ligatures and
// full-width characters from manuals match typed queries.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRe.ReplaceAllString(s, "\n\n"))
}

// =============================================================================
// CHUNKING
// =============================================================================

// ChunkPages splits every page into overlapping chunks. Empty pages
// produce nothing; page numbers follow the input order starting at 1.
func ChunkPages(pages []string) []Chunk {
	var chunks []Chunk
	for i, p := range pages {
		for _, text := range SplitText(p, ChunkSize, ChunkOverlap) {
			chunks = append(chunks, Chunk{Page: i + 1, Text: text})
		}
	}
	return chunks
}

// SplitText cuts text into pieces of at most size characters. Cuts prefer
// paragraph breaks, then line breaks, then sentence ends, then spaces. Each
// piece after the first begins up to overlap characters before the end of
// the previous one, at a word boundary.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}
		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		for next < end && !unicode.IsSpace(runes[next-1]) {
			next++
		}
		start = next
	}
	return chunks
}

// cutPoint returns the index just past the strongest separator in the
// second half of runes[start:end], or end when there is none.
func cutPoint(runes []rune, start, end int) int {
	half := start + (end-start)/2
	window := string(runes[start:end])
	halfBytes := len(string(runes[start:half]))
	for _, sep := range chunkSeparators {
		if i := strings.LastIndex(window, sep); i >= halfBytes {
			return start + utf8.RuneCountInString(window[:i+len(sep)])
		}
	}
	return end
}
