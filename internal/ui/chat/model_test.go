// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/ui/styles"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeGateway records calls and returns canned responses.
type fakeGateway struct {
	mu       sync.Mutex
	queries  []string
	codes    []string
	lookups  []vehicle.Context
	uploads  [][]string
	health   int
	queryRes *api.QueryResponse
	queryErr error
	diagRes  func(code string) (*api.DiagnosticRecord, error)
	specsRes *api.VehicleSpecs
	specsErr error
	upRes    *api.UploadResult
	upErr    error
}

func (g *fakeGateway) Query(_ context.Context, text string) (*api.QueryResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, text)
	return g.queryRes, g.queryErr
}

func (g *fakeGateway) LookupDiagnostic(_ context.Context, code string) (*api.DiagnosticRecord, error) {
	g.mu.Lock()
	g.codes = append(g.codes, code)
	g.mu.Unlock()
	if g.diagRes != nil {
		return g.diagRes(code)
	}
	return &api.DiagnosticRecord{Code: code}, nil
}

func (g *fakeGateway) LookupVehicleInfo(_ context.Context, mk, mdl string, year int) (*api.VehicleSpecs, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups = append(g.lookups, vehicle.Context{Make: mk, Model: mdl, Year: year})
	return g.specsRes, g.specsErr
}

func (g *fakeGateway) UploadManuals(_ context.Context, files []api.File) (*api.UploadResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uploads = append(g.uploads, api.Names(files))
	return g.upRes, g.upErr
}

func (g *fakeGateway) Health(context.Context) (*api.HealthStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.health++
	return &api.HealthStatus{Status: "ok", Version: "0.1.0"}, nil
}

func newTestModel(t *testing.T, gw *fakeGateway) (Model, *vehicle.Store, *config.Endpoint) {
	t.Helper()
	endpoint, err := config.NewEndpoint("http://localhost:8000")
	require.NoError(t, err)
	store := vehicle.NewStore()

	m := New(Options{
		Theme:       styles.NewTheme("dark"),
		Gateway:     gw,
		Endpoint:    endpoint,
		Vehicles:    store,
		ShowSources: true,
		StartDir:    t.TempDir(),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, store, endpoint
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out, cmd
}

// run executes cmd and any batched commands, returning every message.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// resolution returns the single message of type T produced by cmd.
func resolution[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var found []T
	for _, msg := range run(cmd) {
		if r, ok := msg.(T); ok {
			found = append(found, r)
		}
	}
	require.Len(t, found, 1)
	return found[0]
}

var (
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	ctrlX    = tea.KeyMsg{Type: tea.KeyCtrlX}
	ctrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlE    = tea.KeyMsg{Type: tea.KeyCtrlE}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// CHAT
// =============================================================================

func TestSubmitChat_AppendsUserMessageBeforeResolution(t *testing.T) {
	sources := []model.Source{
		{Text: "Check coil packs", Source: "camry.pdf", Page: intPtr(12), Score: floatPtr(0.87)},
		{Text: "Spark plug gap"},
	}
	gw := &fakeGateway{queryRes: &api.QueryResponse{Answer: "Start with the ignition system.", Sources: sources}}
	m, _, _ := newTestModel(t, gw)

	m.chatInput.SetValue("  How do I diagnose P0300?  ")
	m, cmd := update(t, m, enter)
	require.NotNil(t, cmd)

	// Before the command runs: user message appended, input cleared, pending.
	require.Equal(t, 1, m.transcript.Len())
	last, _ := m.transcript.Last()
	assert.Equal(t, model.RoleUser, last.Role)
	assert.Equal(t, "How do I diagnose P0300?", last.Content)
	assert.Empty(t, m.chatInput.Value())
	assert.True(t, m.chatSlot.Pending())
	assert.Empty(t, gw.queries)

	res := resolution[QueryResolvedMsg](t, cmd)
	assert.Equal(t, []string{"How do I diagnose P0300?"}, gw.queries)

	m, _ = update(t, m, res)
	require.Equal(t, 2, m.transcript.Len())
	last, _ = m.transcript.Last()
	assert.Equal(t, model.RoleAssistant, last.Role)
	assert.Equal(t, "Start with the ignition system.", last.Content)
	assert.Equal(t, sources, last.Sources)
	assert.False(t, m.chatSlot.Pending())
	assert.Contains(t, m.viewport.View(), "camry.pdf p.12 (0.87)")
}

func TestSubmitChat_WhitespaceIsIgnored(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)

	for _, input := range []string{"", "   ", "\t\n"} {
		m.chatInput.SetValue(input)
		var cmd tea.Cmd
		m, cmd = update(t, m, enter)
		assert.Nil(t, cmd)
	}
	assert.True(t, m.transcript.IsEmpty())
	assert.True(t, m.chatSlot.State().IsIdle())
	assert.Empty(t, gw.queries)
	assert.Contains(t, m.View(), model.EmptyTranscriptHint)
}

func TestSubmitChat_IgnoredWhilePending(t *testing.T) {
	gw := &fakeGateway{queryRes: &api.QueryResponse{Answer: "ok"}}
	m, _, _ := newTestModel(t, gw)

	m.chatInput.SetValue("first")
	m, _ = update(t, m, enter)

	m.chatInput.SetValue("second")
	m, cmd := update(t, m, enter)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.transcript.Len())
	assert.Equal(t, "second", m.chatInput.Value(), "blocked input is kept")
	assert.Equal(t, pendingQueryNotice, m.notice.Text)
	assert.False(t, m.notice.IsError)
	assert.Empty(t, gw.queries, "no request is sent for the blocked question")
}

func TestSubmitChat_FailureShowsBody(t *testing.T) {
	gw := &fakeGateway{queryErr: &api.RequestError{StatusCode: 500, Status: "500 Internal Server Error", Body: "index unavailable"}}
	m, _, _ := newTestModel(t, gw)

	m.chatInput.SetValue("why is it misfiring")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, resolution[QueryResolvedMsg](t, cmd))

	msg, failed := m.chatSlot.State().Message()
	require.True(t, failed)
	assert.Equal(t, "index unavailable", msg)
	assert.Equal(t, 1, m.transcript.Len(), "no assistant message on failure")
	assert.Contains(t, m.View(), "index unavailable")

	// The next submit clears the error.
	m.chatInput.SetValue("try again")
	m, _ = update(t, m, enter)
	_, failed = m.chatSlot.State().Message()
	assert.False(t, failed)
	assert.True(t, m.chatSlot.Pending())
}

func TestSubmitChat_EmptyErrorUsesFallback(t *testing.T) {
	gw := &fakeGateway{queryErr: errors.New("")}
	m, _, _ := newTestModel(t, gw)

	m.chatInput.SetValue("hello")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, resolution[QueryResolvedMsg](t, cmd))

	msg, _ := m.chatSlot.State().Message()
	assert.Equal(t, "Failed to query", msg)
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

func TestDiagnostic_NormalizesCode(t *testing.T) {
	gw := &fakeGateway{diagRes: func(code string) (*api.DiagnosticRecord, error) {
		return &api.DiagnosticRecord{
			Code:                 code,
			Name:                 "Random/Multiple Cylinder Misfire Detected",
			Symptoms:             []string{"Rough idle"},
			TroubleshootingSteps: []string{"Scan for codes", "Swap coils"},
		}, nil
	}}
	m, _, _ := newTestModel(t, gw)
	m, _ = update(t, m, tab)
	m, _ = update(t, m, tab)
	require.Equal(t, PaneDiagnostic, m.Pane())

	m.codeInput.SetValue(" p0300 ")
	m, cmd := update(t, m, enter)
	assert.Equal(t, "P0300", m.codeInput.Value())

	m, _ = update(t, m, resolution[DiagnosticResolvedMsg](t, cmd))
	assert.Equal(t, []string{"P0300"}, gw.codes)

	rec, ok := m.diagSlot.State().Value()
	require.True(t, ok)
	assert.Equal(t, "P0300", rec.Code)

	view := m.View()
	assert.Contains(t, view, "P0300 - Random/Multiple Cylinder Misfire Detected")
	assert.Contains(t, view, "2. Swap coils")
}

func TestDiagnostic_EmptyCodeIsIgnored(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)
	m, _ = update(t, m, shiftTab)
	m, _ = update(t, m, shiftTab)
	require.Equal(t, PaneDiagnostic, m.Pane())

	m.codeInput.SetValue("   ")
	_, cmd := update(t, m, enter)
	assert.Nil(t, cmd)
	assert.Empty(t, gw.codes)
}

func TestDiagnostic_StaleResolutionIsDropped(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)
	m.pane = PaneDiagnostic

	m.codeInput.SetValue("P0171")
	m, first := update(t, m, enter)
	m.codeInput.SetValue("P0300")
	m, second := update(t, m, enter)

	firstRes := resolution[DiagnosticResolvedMsg](t, first)
	secondRes := resolution[DiagnosticResolvedMsg](t, second)

	m, _ = update(t, m, firstRes)
	assert.True(t, m.diagSlot.Pending(), "superseded lookup must not resolve the slot")

	m, _ = update(t, m, secondRes)
	rec, ok := m.diagSlot.State().Value()
	require.True(t, ok)
	assert.Equal(t, "P0300", rec.Code)

	// A late stale result after success changes nothing either.
	m, _ = update(t, m, firstRes)
	rec, _ = m.diagSlot.State().Value()
	assert.Equal(t, "P0300", rec.Code)
}

// =============================================================================
// VEHICLE
// =============================================================================

func fillVehicle(m Model, mk, mdl, year string) Model {
	m.vehicleInputs[fieldMake].SetValue(mk)
	m.vehicleInputs[fieldModel].SetValue(mdl)
	m.vehicleInputs[fieldYear].SetValue(year)
	return m
}

func TestVehicle_SuccessSetsContext(t *testing.T) {
	gw := &fakeGateway{specsRes: &api.VehicleSpecs{Raw: []byte(`{"specs":{"oil_capacity":"4.8 qt"}}`)}}
	m, store, _ := newTestModel(t, gw)
	m, _ = update(t, m, tab)
	require.Equal(t, PaneVehicle, m.Pane())

	m = fillVehicle(m, "Toyota", "Camry", "2018")
	m, cmd := update(t, m, enter)
	_, set := store.Get()
	assert.False(t, set, "context is only set after a successful lookup")

	m, _ = update(t, m, resolution[VehicleResolvedMsg](t, cmd))
	v, set := store.Get()
	require.True(t, set)
	assert.Equal(t, vehicle.Context{Make: "Toyota", Model: "Camry", Year: 2018}, v)
	assert.Equal(t, []vehicle.Context{v}, gw.lookups)

	view := m.View()
	assert.Contains(t, view, "oil_capacity")
	assert.Contains(t, view, "2018 Toyota Camry")
}

func TestVehicle_FailureKeepsContext(t *testing.T) {
	gw := &fakeGateway{specsErr: &api.RequestError{StatusCode: 404, Body: `{"detail":"Vehicle info not found"}`}}
	m, store, _ := newTestModel(t, gw)
	m.pane = PaneVehicle
	store.Set(vehicle.Context{Make: "Honda", Model: "Civic", Year: 2010})

	m = fillVehicle(m, "Toyota", "Camry", "1901")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, resolution[VehicleResolvedMsg](t, cmd))

	v, _ := store.Get()
	assert.Equal(t, "Honda", v.Make)
	msg, failed := m.vehicleSlot.State().Message()
	require.True(t, failed)
	assert.Contains(t, msg, "Vehicle info not found")
}

func TestVehicle_InvalidYearFailsWithoutRequest(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)
	m.pane = PaneVehicle

	m = fillVehicle(m, "Toyota", "Camry", "20x8")
	m, _ = update(t, m, enter)

	msg, failed := m.vehicleSlot.State().Message()
	require.True(t, failed)
	assert.Contains(t, msg, "year")
	assert.Empty(t, gw.lookups)
}

func TestVehicle_EmptyFieldsAreIgnored(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)
	m.pane = PaneVehicle

	m = fillVehicle(m, "  ", "Camry", "2018")
	m, cmd := update(t, m, enter)
	assert.Nil(t, cmd)
	assert.True(t, m.vehicleSlot.State().IsIdle())
	assert.Empty(t, gw.lookups)
}

func TestVehicle_ClearContext(t *testing.T) {
	m, store, _ := newTestModel(t, &fakeGateway{})
	store.Set(vehicle.Context{Make: "Toyota", Model: "Camry", Year: 2018})

	// ctrl+x does nothing on the chat pane.
	m, _ = update(t, m, ctrlX)
	_, set := store.Get()
	assert.True(t, set)

	m, _ = update(t, m, tab)
	m, _ = update(t, m, ctrlX)
	_, set = store.Get()
	assert.False(t, set)
	assert.Contains(t, m.View(), "none (queries are sent without a vehicle)")
}

func TestVehicle_FieldNavigation(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeGateway{})
	m.pane = PaneVehicle

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, fieldModel, m.vehicleFocus)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, fieldYear, m.vehicleFocus)
}

// =============================================================================
// UPLOAD
// =============================================================================

func writePDFs(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte("%PDF-1.4 "+name), 0600))
	}
	return paths
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestUpload_SuccessClearsSelection(t *testing.T) {
	gw := &fakeGateway{upRes: &api.UploadResult{IngestedCount: 37, Files: []string{"a.pdf", "b.pdf"}}}
	m, _, _ := newTestModel(t, gw)
	m, _ = update(t, m, shiftTab)
	require.Equal(t, PaneUpload, m.Pane())

	paths := writePDFs(t, "a.pdf", "b.pdf")
	for _, p := range paths {
		m = typeText(t, m, p)
		m, _ = update(t, m, enter)
	}
	// Duplicates are ignored.
	m = typeText(t, m, paths[0])
	m, _ = update(t, m, enter)
	require.Equal(t, paths, m.Selection())

	m, cmd := update(t, m, ctrlS)
	assert.Equal(t, paths, m.Selection(), "selection is kept until the upload resolves")

	m, _ = update(t, m, resolution[UploadResolvedMsg](t, cmd))
	assert.Equal(t, [][]string{{"a.pdf", "b.pdf"}}, gw.uploads)
	assert.Empty(t, m.Selection())
	assert.Contains(t, m.View(), "Ingested 37 chunks from a.pdf, b.pdf")
}

func TestUpload_FailureClearsSelection(t *testing.T) {
	gw := &fakeGateway{upErr: &api.RequestError{StatusCode: 500, Body: "Failed to ingest documents: disk full"}}
	m, _, _ := newTestModel(t, gw)
	m.pane = PaneUpload

	m.selection = writePDFs(t, "manual.pdf")
	m, cmd := update(t, m, enter) // empty path input submits
	m, _ = update(t, m, resolution[UploadResolvedMsg](t, cmd))

	assert.Empty(t, m.Selection())
	msg, failed := m.uploadSlot.State().Message()
	require.True(t, failed)
	assert.Equal(t, "Failed to ingest documents: disk full", msg)
}

func TestUpload_MissingFileFailsSlot(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)
	m.pane = PaneUpload

	m.selection = []string{filepath.Join(t.TempDir(), "gone.pdf")}
	m, cmd := update(t, m, ctrlS)
	m, _ = update(t, m, resolution[UploadResolvedMsg](t, cmd))

	_, failed := m.uploadSlot.State().Message()
	assert.True(t, failed)
	assert.Empty(t, gw.uploads)
	assert.Empty(t, m.Selection())
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeGateway{})
	m.pane = PaneUpload

	m.addFile("/tmp/notes.txt")
	assert.Empty(t, m.Selection())
	assert.True(t, m.notice.IsError)

	m.addFile("/tmp/MANUAL.PDF")
	assert.Equal(t, []string{"/tmp/MANUAL.PDF"}, m.Selection())

	m, _ = update(t, m, ctrlX)
	assert.Empty(t, m.Selection())
}

func TestUpload_EmptySelectionIsIgnored(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)
	m.pane = PaneUpload

	_, cmd := update(t, m, ctrlS)
	assert.Nil(t, cmd)
	assert.Empty(t, gw.uploads)
}

// =============================================================================
// BACKEND
// =============================================================================

func TestEditBaseURL(t *testing.T) {
	gw := &fakeGateway{}
	m, _, endpoint := newTestModel(t, gw)

	m, _ = update(t, m, ctrlE)
	require.True(t, m.editingURL)
	assert.Equal(t, "http://localhost:8000", m.urlInput.Value())

	m.urlInput.SetValue("not a url")
	m, _ = update(t, m, enter)
	assert.True(t, m.editingURL)
	assert.NotEmpty(t, m.urlErr)
	assert.Equal(t, "http://localhost:8000", endpoint.BaseURL())

	m.urlInput.SetValue("http://10.0.0.7:8000/")
	m, cmd := update(t, m, enter)
	assert.False(t, m.editingURL)
	assert.Equal(t, "http://10.0.0.7:8000", endpoint.BaseURL())

	m, _ = update(t, m, resolution[HealthResolvedMsg](t, cmd))
	assert.Equal(t, 1, gw.health)
	assert.Contains(t, m.View(), "online v0.1.0")
}

func TestEditBaseURL_Cancel(t *testing.T) {
	m, _, endpoint := newTestModel(t, &fakeGateway{})

	m, _ = update(t, m, ctrlE)
	m.urlInput.SetValue("http://elsewhere:1")
	m, _ = update(t, m, esc)
	assert.False(t, m.editingURL)
	assert.Equal(t, "http://localhost:8000", endpoint.BaseURL())
}

func TestBaseURLChangedMsg(t *testing.T) {
	gw := &fakeGateway{}
	m, _, _ := newTestModel(t, gw)

	m, cmd := update(t, m, BaseURLChangedMsg{URL: "http://reloaded:8000"})
	assert.Contains(t, m.notice.Text, "http://reloaded:8000")
	resolution[HealthResolvedMsg](t, cmd)
	assert.Equal(t, 1, gw.health)
}

func TestPaneCycling(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeGateway{})

	want := []Pane{PaneVehicle, PaneDiagnostic, PaneUpload, PaneChat}
	for _, p := range want {
		m, _ = update(t, m, tab)
		assert.Equal(t, p, m.Pane())
	}
	m, _ = update(t, m, shiftTab)
	assert.Equal(t, PaneUpload, m.Pane())
	assert.Equal(t, "Upload", m.Pane().String())
}
