// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/request"
	"github.com/jeranaias/wrench-tui/internal/ui/components"
	"github.com/jeranaias/wrench-tui/internal/ui/styles"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// =============================================================================
// PANES
// =============================================================================

// Pane identifies one of the four presentation surfaces.
type Pane int

const (
	PaneChat Pane = iota
	PaneVehicle
	PaneDiagnostic
	PaneUpload
	paneCount
)

var paneNames = []string{"Chat", "Vehicle", "Diagnostic", "Upload"}

// String returns the tab label.
func (p Pane) String() string {
	if p < 0 || p >= paneCount {
		return "Unknown"
	}
	return paneNames[p]
}

// Vehicle form fields.
const (
	fieldMake = iota
	fieldModel
	fieldYear
	fieldCount
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a new Model.
type Options struct {
	Theme    *styles.Theme
	Gateway  Gateway
	Endpoint URLSetter
	Vehicles *vehicle.Store
	Logger   *slog.Logger

	// Form prefill. None of these touch the vehicle context.
	FormDefaults vehicle.Context
	DefaultCode  string
	DefaultQuery string

	ShowSources    bool
	RenderMarkdown bool
	WordWrap       int

	// StartDir is where the file browser opens. Empty means the working
	// directory.
	StartDir string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole TUI.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	help   help.Model
	logger *slog.Logger

	gateway  Gateway
	endpoint URLSetter
	vehicles *vehicle.Store

	width  int
	height int
	pane   Pane

	// Chat
	transcript  *model.Transcript
	chatInput   textinput.Model
	viewport    viewport.Model
	chatSlot    *request.Slot[*api.QueryResponse]
	suggestions []string
	markdown    *components.Markdown
	showSources bool
	wordWrap    int

	// Vehicle
	vehicleInputs []textinput.Model
	vehicleFocus  int
	vehicleSlot   *request.Slot[*api.VehicleSpecs]
	vehicleReq    vehicle.Context

	// Diagnostic
	codeInput textinput.Model
	diagSlot  *request.Slot[*api.DiagnosticRecord]

	// Upload
	pathInput  textinput.Model
	picker     filepicker.Model
	browsing   bool
	selection  []string
	uploadSlot *request.Slot[*api.UploadResult]

	// Backend
	healthSlot *request.Slot[*api.HealthStatus]
	editingURL bool
	urlInput   textinput.Model
	urlErr     string

	spinner  components.Spinner
	notice   NoticeMsg
	showHelp bool
}

// New creates the model. Gateway and Vehicles are required.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	vehicles := opts.Vehicles
	if vehicles == nil {
		vehicles = vehicle.NewStore()
	}

	m := Model{
		theme:       theme,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		logger:      logger.With("component", "tui"),
		gateway:     opts.Gateway,
		endpoint:    opts.Endpoint,
		vehicles:    vehicles,
		transcript:  model.NewTranscript(),
		chatSlot:    request.NewSlot[*api.QueryResponse](SlotChat, request.FallbackQuery),
		vehicleSlot: request.NewSlot[*api.VehicleSpecs](SlotVehicle, request.FallbackLookup),
		diagSlot:    request.NewSlot[*api.DiagnosticRecord](SlotDiagnostic, request.FallbackLookup),
		uploadSlot:  request.NewSlot[*api.UploadResult](SlotUpload, request.FallbackUpload),
		healthSlot:  request.NewSlot[*api.HealthStatus](SlotHealth, request.FallbackLookup),
		showSources: opts.ShowSources,
		wordWrap:    opts.WordWrap,
		spinner:     components.NewSpinner(theme),
	}

	m.chatInput = newInput(theme, "> ", "Ask about a repair...", 0)
	m.chatInput.SetValue(opts.DefaultQuery)
	m.chatInput.Focus()

	m.vehicleInputs = make([]textinput.Model, fieldCount)
	m.vehicleInputs[fieldMake] = newInput(theme, "Make:  ", "Toyota", 40)
	m.vehicleInputs[fieldModel] = newInput(theme, "Model: ", "Camry", 40)
	m.vehicleInputs[fieldYear] = newInput(theme, "Year:  ", "2018", 4)
	m.vehicleInputs[fieldMake].SetValue(opts.FormDefaults.Make)
	m.vehicleInputs[fieldModel].SetValue(opts.FormDefaults.Model)
	if opts.FormDefaults.Year > 0 {
		m.vehicleInputs[fieldYear].SetValue(strconv.Itoa(opts.FormDefaults.Year))
	}
	for i := fieldMake; i <= fieldModel; i++ {
		m.vehicleInputs[i].ShowSuggestions = true
		m.vehicleInputs[i].KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("ctrl+t"))
	}
	m.vehicleInputs[fieldMake].SetSuggestions(vehicle.MakeSuggestions())
	m.vehicleInputs[fieldModel].SetSuggestions(vehicle.ModelSuggestions(opts.FormDefaults.Make))

	m.codeInput = newInput(theme, "Code: ", "P0300", 16)
	m.codeInput.SetValue(opts.DefaultCode)

	m.pathInput = newInput(theme, "File: ", "path/to/manual.pdf", 0)

	m.picker = filepicker.New()
	m.picker.AllowedTypes = []string{".pdf"}
	if opts.StartDir != "" {
		m.picker.CurrentDirectory = opts.StartDir
	}

	m.urlInput = newInput(theme, "Backend URL: ", "http://localhost:8000", 0)

	m.markdown = components.NewMarkdown(theme.GlamourStyle(), m.contentWidth(), opts.RenderMarkdown)
	m.viewport = viewport.New(80, 10)
	m.refreshTranscript()
	return m
}

func newInput(theme *styles.Theme, prompt, placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return ti
}

// Init starts the first health probe and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealth())
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Pane returns the focused pane.
func (m Model) Pane() Pane { return m.pane }

// Transcript returns the chat transcript.
func (m Model) Transcript() *model.Transcript { return m.transcript }

// Selection returns a copy of the files selected for upload.
func (m Model) Selection() []string {
	out := make([]string, len(m.selection))
	copy(out, m.selection)
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

// checkHealth starts a health probe. It is a no-op without a gateway.
func (m Model) checkHealth() tea.Cmd {
	if m.gateway == nil {
		return nil
	}
	return healthCmd(m.gateway, m.healthSlot.Invoke())
}

// busy reports whether any user action is in flight.
func (m Model) busy() bool {
	return m.chatSlot.Pending() || m.vehicleSlot.Pending() ||
		m.diagSlot.Pending() || m.uploadSlot.Pending()
}

// syncSpinner starts or stops the spinner to match busy.
func (m *Model) syncSpinner() tea.Cmd {
	if m.busy() {
		return m.spinner.Start()
	}
	m.spinner.Stop()
	return nil
}

func (m Model) contentWidth() int {
	w := m.width
	if m.wordWrap > 0 && (w == 0 || m.wordWrap < w) {
		w = m.wordWrap
	}
	if w <= 0 {
		w = 80
	}
	return w
}

// refreshTranscript re-renders the transcript into the viewport and scrolls
// to the newest message.
func (m *Model) refreshTranscript() {
	content := components.Transcript(m.theme, m.transcript.Messages(), components.TranscriptOptions{
		Width:       m.contentWidth(),
		ShowSources: m.showSources,
		Markdown:    m.markdown,
	})
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// resize lays the panes out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.help.Width = width

	// header, tab gap, input, suggestions, status bar
	vpHeight := height - 7
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.picker.Height = vpHeight - 6
	if m.picker.Height < 3 {
		m.picker.Height = 3
	}
	m.chatInput.Width = width - 4
	m.markdown.SetWidth(m.contentWidth() - 4)
	m.refreshTranscript()
}
