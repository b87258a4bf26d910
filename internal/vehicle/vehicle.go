// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vehicle

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors for vehicle validation.
var (
	ErrMissingMake  = errors.New("make is required")
	ErrMissingModel = errors.New("model is required")
	ErrInvalidYear  = errors.New("year must be a positive whole number")
)

// ValidationError wraps a sentinel with the field and value that failed.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Wrapped, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// =============================================================================
// CONTEXT
// =============================================================================

// Context is the make/model/year triple attached to chat queries.
// It is always replaced as a whole, never edited field by field.
type Context struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// New builds a Context from raw form input. Make and model are trimmed;
// year must parse as a positive integer.
func New(mk, model, year string) (Context, error) {
	mk = strings.TrimSpace(mk)
	model = strings.TrimSpace(model)
	if mk == "" {
		return Context{}, &ValidationError{Field: "make", Wrapped: ErrMissingMake}
	}
	if model == "" {
		return Context{}, &ValidationError{Field: "model", Wrapped: ErrMissingModel}
	}
	y, err := ParseYear(year)
	if err != nil {
		return Context{}, err
	}
	return Context{Make: mk, Model: model, Year: y}, nil
}

// ParseYear parses a model year in decimal form.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return 0, &ValidationError{Field: "year", Value: s, Wrapped: ErrInvalidYear}
	}
	return y, nil
}

// String renders the vehicle as "2018 Toyota Camry".
func (c Context) String() string {
	return fmt.Sprintf("%d %s %s", c.Year, c.Make, c.Model)
}

// IsZero reports whether c carries no vehicle.
func (c Context) IsZero() bool {
	return c == Context{}
}

// =============================================================================
// KNOWN MAKES
// =============================================================================

// KnownMakes maps common makes to their popular models. It only feeds input
// suggestions; lookups are never restricted to it.
var KnownMakes = map[string][]string{
	"Toyota":     {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma", "Tundra", "4Runner", "Prius"},
	"Honda":      {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "HR-V", "Ridgeline", "Fit"},
	"Ford":       {"F-150", "Mustang", "Explorer", "Escape", "Ranger", "Bronco", "Edge", "Focus", "Fusion"},
	"Chevrolet":  {"Silverado", "Equinox", "Malibu", "Traverse", "Tahoe", "Colorado", "Camaro"},
	"Nissan":     {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Maxima"},
	"Hyundai":    {"Elantra", "Sonata", "Tucson", "Santa Fe", "Kona"},
	"Kia":        {"Forte", "K5", "Sportage", "Telluride", "Sorento", "Soul"},
	"Subaru":     {"Outback", "Forester", "Crosstrek", "Impreza", "WRX", "Legacy"},
	"Volkswagen": {"Golf", "Jetta", "Tiguan", "Atlas", "Passat"},
	"Mazda":      {"Mazda3", "Mazda6", "CX-5", "CX-9", "CX-30"},
	"Jeep":       {"Wrangler", "Grand Cherokee", "Cherokee", "Compass"},
	"BMW":        {"3 Series", "5 Series", "X3", "X5"},
	"Tesla":      {"Model 3", "Model Y", "Model S", "Model X"},
}

// MakeSuggestions returns the known makes in sorted order.
func MakeSuggestions() []string {
	makes := make([]string, 0, len(KnownMakes))
	for m := range KnownMakes {
		makes = append(makes, m)
	}
	sort.Strings(makes)
	return makes
}

// ModelSuggestions returns the known models for a make, matched
// case-insensitively. Unknown makes return nil.
func ModelSuggestions(mk string) []string {
	for m, models := range KnownMakes {
		if strings.EqualFold(m, strings.TrimSpace(mk)) {
			out := make([]string, len(models))
			copy(out, models)
			return out
		}
	}
	return nil
}
