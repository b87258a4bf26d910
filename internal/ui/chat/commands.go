// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/request"
)

// healthTimeout bounds the background health probe only. User actions have no
// client-side timeout unless one is configured on the HTTP client.
const healthTimeout = 5 * time.Second

// Gateway is the subset of the API client the TUI drives.
type Gateway interface {
	Query(ctx context.Context, text string) (*api.QueryResponse, error)
	LookupDiagnostic(ctx context.Context, code string) (*api.DiagnosticRecord, error)
	LookupVehicleInfo(ctx context.Context, mk, model string, year int) (*api.VehicleSpecs, error)
	UploadManuals(ctx context.Context, files []api.File) (*api.UploadResult, error)
	Health(ctx context.Context) (*api.HealthStatus, error)
}

// URLSetter is the live backend URL. config.Endpoint implements it.
type URLSetter interface {
	BaseURL() string
	SetBaseURL(raw string) error
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// runSlot runs fn on a command goroutine and tags the outcome with the slot
// name and ticket it was invoked under.
func runSlot[T any](slot string, ticket uint64, fn func(ctx context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fn(context.Background())
		return request.Resolution[T]{
			Slot:   slot,
			Ticket: ticket,
			Result: request.FromPair(v, err),
		}
	}
}

// queryCmd sends a chat query.
func queryCmd(gw Gateway, ticket uint64, text string) tea.Cmd {
	return runSlot(SlotChat, ticket, func(ctx context.Context) (*api.QueryResponse, error) {
		return gw.Query(ctx, text)
	})
}

// vehicleCmd looks up vehicle specs.
func vehicleCmd(gw Gateway, ticket uint64, mk, model string, year int) tea.Cmd {
	return runSlot(SlotVehicle, ticket, func(ctx context.Context) (*api.VehicleSpecs, error) {
		return gw.LookupVehicleInfo(ctx, mk, model, year)
	})
}

// diagnosticCmd looks up a trouble code.
func diagnosticCmd(gw Gateway, ticket uint64, code string) tea.Cmd {
	return runSlot(SlotDiagnostic, ticket, func(ctx context.Context) (*api.DiagnosticRecord, error) {
		return gw.LookupDiagnostic(ctx, code)
	})
}

// uploadCmd reads the selected files and uploads them.
func uploadCmd(gw Gateway, ticket uint64, paths []string) tea.Cmd {
	return runSlot(SlotUpload, ticket, func(ctx context.Context) (*api.UploadResult, error) {
		files, err := api.ReadFiles(paths)
		if err != nil {
			return nil, err
		}
		return gw.UploadManuals(ctx, files)
	})
}

// healthCmd probes the backend.
func healthCmd(gw Gateway, ticket uint64) tea.Cmd {
	return runSlot(SlotHealth, ticket, func(ctx context.Context) (*api.HealthStatus, error) {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		return gw.Health(ctx)
	})
}
