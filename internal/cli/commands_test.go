// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/devserver"
	"github.com/jeranaias/wrench-tui/internal/logging"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// testRuntime is a Runtime backed by an in-process development server.
type testRuntime struct {
	*Runtime
	out    *bytes.Buffer
	errOut *bytes.Buffer
	srv    *devserver.Server
}

func newTestRuntime(t *testing.T) *testRuntime {
	t.Helper()
	srv, err := devserver.New(devserver.Options{
		DBPath:  filepath.Join(t.TempDir(), "dev.db"),
		Version: "test",
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return runtimeFor(t, ts.URL, srv)
}

func runtimeFor(t *testing.T, baseURL string, srv *devserver.Server) *testRuntime {
	t.Helper()
	endpoint, err := config.NewEndpoint(baseURL)
	require.NoError(t, err)

	vehicles := vehicle.NewStore()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testRuntime{
		Runtime: &Runtime{
			Config:     config.Default(),
			ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
			Endpoint:   endpoint,
			Vehicles:   vehicles,
			Client:     api.NewClient(endpoint, vehicles, &api.Options{Logger: logging.Discard()}),
			Logger:     logging.Discard(),
			Stdout:     out,
			Stderr:     errOut,
		},
		out:    out,
		errOut: errOut,
		srv:    srv,
	}
}

func writeManual(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))
	return path
}

// =============================================================================
// ASK
// =============================================================================

func TestHandleAsk(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	manual := writeManual(t, "camry.pdf", "Thermostat replacement. Drain the coolant and remove the housing bolts.")
	require.NoError(t, HandleUpload(ctx, rt.Runtime, Args{Files: []string{manual}, Quiet: true}))
	rt.out.Reset()

	err := HandleAsk(ctx, rt.Runtime, Args{Query: "replace thermostat", Make: "Toyota", Model: "Camry", Year: "2018"})
	require.NoError(t, err)

	out := rt.out.String()
	assert.Contains(t, out, "2018 Toyota Camry")
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "camry.pdf p.1")
	assert.Contains(t, out, "Suggested next steps")

	v, ok := rt.Vehicles.Get()
	require.True(t, ok)
	assert.Equal(t, 2018, v.Year)
}

func TestHandleAsk_JSON(t *testing.T) {
	rt := newTestRuntime(t)
	err := HandleAsk(context.Background(), rt.Runtime, Args{Query: "brake noise", JSON: true})
	require.NoError(t, err)

	var resp struct {
		Success bool    `json:"success"`
		Data    AskData `json:"data"`
		Command string  `json:"command"`
	}
	require.NoError(t, json.Unmarshal(rt.out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ask", resp.Command)
	assert.Equal(t, "brake noise", resp.Data.Query)
	assert.Nil(t, resp.Data.Vehicle)
	require.NotNil(t, resp.Data.Answer)
	assert.NotEmpty(t, resp.Data.Answer.Answer)
}

func TestHandleAsk_InputErrors(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	err := HandleAsk(ctx, rt.Runtime, Args{Query: "   "})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleAsk(ctx, rt.Runtime, Args{Query: "noise", Make: "Toyota", Model: "Camry", Year: "next year"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	_, ok := rt.Vehicles.Get()
	assert.False(t, ok, "an invalid vehicle must not become the context")
}

// =============================================================================
// LOOKUPS
// =============================================================================

func TestHandleDiag(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	require.NoError(t, HandleDiag(ctx, rt.Runtime, Args{Code: " p0420 "}))
	out := rt.out.String()
	assert.Contains(t, out, "P0420 - Catalyst System Efficiency Below Threshold (Bank 1)")
	assert.Contains(t, out, "Troubleshooting steps")
	assert.Contains(t, out, "  1. Fix any misfire codes first")

	err := HandleDiag(ctx, rt.Runtime, Args{Code: "P9999"})
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Contains(t, err.Error(), "Diagnostic code not found")

	err = HandleDiag(ctx, rt.Runtime, Args{})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleVehicle(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	require.NoError(t, HandleVehicle(ctx, rt.Runtime, Args{Make: "toyota", Model: "camry", Year: "2018"}))
	assert.Contains(t, rt.out.String(), "2018 toyota camry")
	assert.Contains(t, rt.out.String(), `"oil_type": "0W-16 synthetic"`)

	rt.out.Reset()
	require.NoError(t, HandleVehicle(ctx, rt.Runtime, Args{Make: "Honda", Model: "Civic", Year: "2019", JSON: true}))
	var resp struct {
		Data devserver.VehicleInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rt.out.Bytes(), &resp))
	assert.Equal(t, "CVT", resp.Data.Transmission)

	err := HandleVehicle(ctx, rt.Runtime, Args{Make: "Toyota", Model: "Camry", Year: "1990"})
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestHandleUpload(t *testing.T) {
	rt := newTestRuntime(t)
	manual := writeManual(t, "civic.pdf", "Oil change. Use 0W-20 synthetic oil.")

	require.NoError(t, HandleUpload(context.Background(), rt.Runtime, Args{Files: []string{manual, manual}}))
	assert.Contains(t, rt.errOut.String(), "Uploading 1 file(s)")
	assert.Contains(t, rt.out.String(), "[OK] Ingested 1 chunks from civic.pdf")
}

func TestHandleUpload_RejectsNonPDF(t *testing.T) {
	rt := newTestRuntime(t)
	notes := writeManual(t, "notes.txt", "not a manual")

	err := HandleUpload(context.Background(), rt.Runtime, Args{Files: []string{notes}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Empty(t, rt.errOut.String(), "nothing should be sent")
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHandleHealth(t *testing.T) {
	rt := newTestRuntime(t)
	require.NoError(t, HandleHealth(context.Background(), rt.Runtime, Args{}))
	assert.Contains(t, rt.out.String(), "[OK] backend ok at")
	assert.Contains(t, rt.out.String(), "development")
}

func TestHandleHealth_Offline(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	rt := runtimeFor(t, url, nil)
	err := HandleHealth(context.Background(), rt.Runtime, Args{})
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, rt.out.String(), "[FAIL] backend offline at "+url)

	rt.out.Reset()
	err = HandleHealth(context.Background(), rt.Runtime, Args{JSON: true})
	require.Error(t, err)

	var resp struct {
		Data HealthData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rt.out.Bytes(), &resp))
	assert.False(t, resp.Data.Online)

	var buf bytes.Buffer
	DisplayError(&buf, "health", err, true)
	assert.Empty(t, buf.String(), "JSON health output is written once")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestHandleConfig(t *testing.T) {
	rt := newTestRuntime(t)

	require.NoError(t, HandleConfig(rt.Runtime, Args{Subcommand: "path"}))
	assert.Equal(t, rt.ConfigPath+"\n", rt.out.String())

	require.NoError(t, HandleConfig(rt.Runtime, Args{Subcommand: "init", Quiet: true}))
	_, err := os.Stat(rt.ConfigPath)
	require.NoError(t, err)
	assert.Error(t, HandleConfig(rt.Runtime, Args{Subcommand: "init"}), "init must not overwrite")

	require.NoError(t, HandleConfig(rt.Runtime, Args{
		Subcommand: "set", ConfigKey: "api.base_url", ConfigVal: "http://10.0.0.5:8000/", Quiet: true,
	}))
	saved := config.Default()
	require.NoError(t, config.LoadTOML(saved, rt.ConfigPath))
	assert.Equal(t, "http://10.0.0.5:8000", saved.API.BaseURL)

	err = HandleConfig(rt.Runtime, Args{Subcommand: "set", ConfigKey: "api.base_url", ConfigVal: "ftp://nope"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	rt.out.Reset()
	require.NoError(t, HandleConfig(rt.Runtime, Args{Subcommand: "get", ConfigKey: "ui.theme"}))
	assert.Equal(t, "auto\n", rt.out.String())

	err = HandleConfig(rt.Runtime, Args{Subcommand: "get", ConfigKey: "no.such.key"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfig(rt.Runtime, Args{Subcommand: "explode"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleConfig_Show(t *testing.T) {
	rt := newTestRuntime(t)
	require.NoError(t, HandleConfig(rt.Runtime, Args{}))
	out := rt.out.String()
	assert.Contains(t, out, "[api]")
	assert.Contains(t, out, "api.base_url")
	assert.Contains(t, out, "[devserver]")
}
