// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// catalog.go - Built-in diagnostic code and vehicle spec reference data.
package devserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

//go:embed data/*.json
var dataFS embed.FS

// VehicleInfo is the payload of GET /vehicle-info/{make}/{model}/{year}.
type VehicleInfo struct {
	Make         string            `json:"make"`
	Model        string            `json:"model"`
	Year         int               `json:"year"`
	Engine       string            `json:"engine,omitempty"`
	Transmission string            `json:"transmission,omitempty"`
	Specs        map[string]string `json:"specs"`
}

// Catalog answers the lookup endpoints from the embedded reference files.
// It is read-only after loading.
type Catalog struct {
	codes    map[string]api.DiagnosticRecord
	vehicles map[string]VehicleInfo
}

// LoadCatalog parses the embedded reference data.
func LoadCatalog() (*Catalog, error) {
	var codes []api.DiagnosticRecord
	if err := readData("data/diagnostic_codes.json", &codes); err != nil {
		return nil, err
	}
	var vehicles []VehicleInfo
	if err := readData("data/vehicle_specs.json", &vehicles); err != nil {
		return nil, err
	}

	c := &Catalog{
		codes:    make(map[string]api.DiagnosticRecord, len(codes)),
		vehicles: make(map[string]VehicleInfo, len(vehicles)),
	}
	for _, rec := range codes {
		c.codes[vehicle.NormalizeCode(rec.Code)] = rec
	}
	for _, v := range vehicles {
		c.vehicles[vehicleKey(v.Make, v.Model, v.Year)] = v
	}
	return c, nil
}

func readData(name string, v interface{}) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Diagnostic looks a code up case-insensitively.
func (c *Catalog) Diagnostic(code string) (api.DiagnosticRecord, bool) {
	rec, ok := c.codes[vehicle.NormalizeCode(code)]
	return rec, ok
}

// Vehicle looks a vehicle up with make and model matched case-insensitively.
func (c *Catalog) Vehicle(mk, model string, year int) (VehicleInfo, bool) {
	v, ok := c.vehicles[vehicleKey(mk, model, year)]
	return v, ok
}

// Codes returns the number of known diagnostic codes.
func (c *Catalog) Codes() int { return len(c.codes) }

func vehicleKey(mk, model string, year int) string {
	return fmt.Sprintf("%s|%s|%d",
		strings.ToLower(strings.TrimSpace(mk)),
		strings.ToLower(strings.TrimSpace(model)),
		year)
}
