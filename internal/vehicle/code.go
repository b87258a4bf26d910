// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vehicle

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dtcPattern matches standard OBD-II codes: a system letter and four hex digits.
var dtcPattern = regexp.MustCompile(`^[PBCU][0-9A-F]{4}$`)

// NormalizeCode trims and uppercases a diagnostic trouble code.
// "p0300 " becomes "P0300". The result is not validated.
func NormalizeCode(code string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Upper(language.Und).String(strings.TrimSpace(code))
}

// IsStandardCode reports whether a normalized code looks like an OBD-II DTC.
// Manufacturer-specific formats exist, so callers use this for hints only.
func IsStandardCode(code string) bool {
	return dtcPattern.MatchString(code)
}

// FindCodes returns the standard codes mentioned in free text, in order of
// first appearance and without duplicates.
func FindCodes(text string) []string {
	var codes []string
	seen := make(map[string]bool)
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) {
		code := NormalizeCode(field)
		if IsStandardCode(code) && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
