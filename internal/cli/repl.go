// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-oriented chat with history.
//
// The REPL keeps the same per-operation request slots and transcript the TUI
// uses, driven synchronously: each line invokes a slot, waits for the call
// and resolves it with the ticket it was given.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/model"
	"github.com/jeranaias/wrench-tui/internal/request"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

const replHelp = `Type a question to ask it. Commands:
  :vehicle MAKE MODEL YEAR   look up a vehicle and use it as context
                             (quote multi-word names: :vehicle "Land Rover" Defender 2021)
  :clear-vehicle             stop sending a vehicle with questions
  :diag CODE                 look up a diagnostic trouble code
  :upload FILE.pdf...        upload service manuals
  :url [URL]                 show or change the backend URL
  :health                    check the backend
  :history                   show this session's transcript
  :help                      show this help
  :quit                      exit (also Ctrl+D)
`

// Repl is one interactive session.
type Repl struct {
	rt       *Runtime
	out      io.Writer
	renderer *glamour.TermRenderer

	transcript *model.Transcript
	chat       *request.Slot[*api.QueryResponse]
	specs      *request.Slot[*api.VehicleSpecs]
	diag       *request.Slot[*api.DiagnosticRecord]
	upload     *request.Slot[*api.UploadResult]
}

// NewRepl creates a session writing to rt.Stdout.
func NewRepl(rt *Runtime) *Repl {
	return &Repl{
		rt:         rt,
		out:        rt.Stdout,
		renderer:   newRenderer(rt),
		transcript: model.NewTranscript(),
		chat:       request.NewSlot[*api.QueryResponse]("chat", request.FallbackQuery),
		specs:      request.NewSlot[*api.VehicleSpecs]("vehicle", request.FallbackLookup),
		diag:       request.NewSlot[*api.DiagnosticRecord]("diagnostic", request.FallbackLookup),
		upload:     request.NewSlot[*api.UploadResult]("upload", request.FallbackUpload),
	}
}

// Transcript returns the session transcript.
func (r *Repl) Transcript() *model.Transcript {
	return r.transcript
}

// HandleRepl runs the interactive loop on the terminal.
func HandleRepl(ctx context.Context, rt *Runtime, args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	repl := NewRepl(rt)
	fmt.Fprintf(rt.Stdout, "wrench %s - connected to %s. Type :help for commands.\n", Version, rt.Endpoint.BaseURL())

	for {
		input, err := line.Prompt(repl.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D
			break
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		quit := repl.Execute(ctx, input)
		if quit || ctx.Err() != nil {
			break
		}
	}

	if historyPath != "" {
		if f, err := os.OpenFile(historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}
	fmt.Fprintln(rt.Stdout)
	return nil
}

func replHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

var replCommands = []string{":vehicle", ":clear-vehicle", ":diag", ":upload", ":url", ":health", ":history", ":help", ":quit"}

func completeCommand(line string) []string {
	if !strings.HasPrefix(line, ":") {
		return nil
	}
	var out []string
	for _, c := range replCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Repl) prompt() string {
	if v, ok := r.rt.Vehicles.Get(); ok {
		return fmt.Sprintf("wrench [%s]> ", v.String())
	}
	return "wrench> "
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute runs one input line and reports whether the session should end.
// Failures are printed, never returned.
func (r *Repl) Execute(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if !strings.HasPrefix(input, ":") {
		r.ask(ctx, input)
		return false
	}

	fields := splitQuoted(input)
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprint(r.out, replHelp)
	case ":vehicle", ":v":
		r.lookupVehicle(ctx, rest)
	case ":clear-vehicle", ":clear":
		r.rt.Vehicles.Clear()
		fmt.Fprintln(r.out, "Vehicle context cleared.")
	case ":diag", ":d":
		r.lookupDiagnostic(ctx, strings.Join(rest, " "))
	case ":upload", ":u":
		r.uploadFiles(ctx, rest)
	case ":url":
		r.setURL(rest)
	case ":health":
		_ = HandleHealth(ctx, r.rt, Args{})
	case ":history":
		r.printHistory()
	default:
		r.printError(fmt.Sprintf("unknown command %s (try :help)", cmd))
	}
	return false
}

// ask appends the question to the transcript, sends it, and appends the
// answer only when the query succeeds.
func (r *Repl) ask(ctx context.Context, text string) {
	ticket := r.chat.Invoke()
	r.transcript.Append(model.NewUserMessage(text))

	resp, err := r.rt.Client.Query(ctx, text)
	r.chat.Resolve(ticket, request.FromPair(resp, err))

	st := r.chat.State()
	if msg, failed := st.Message(); failed {
		r.printError(msg)
		return
	}
	if resp, ok := st.Value(); ok && resp != nil {
		r.transcript.Append(model.NewAssistantMessage(resp.Answer, resp.Sources))
		printAnswer(r.out, r.rt, r.renderer, resp)
	}
}

// lookupVehicle sets the vehicle context after a successful lookup. The
// previous context stays in place when the lookup fails.
func (r *Repl) lookupVehicle(ctx context.Context, fields []string) {
	if len(fields) != 3 {
		r.printError("usage: :vehicle MAKE MODEL YEAR")
		return
	}
	v, err := vehicle.New(fields[0], fields[1], fields[2])
	if err != nil {
		r.specs.Fail(err)
		r.printSlotError(r.specs.State().Message())
		return
	}

	ticket := r.specs.Invoke()
	specs, err := r.rt.Client.LookupVehicleInfo(ctx, v.Make, v.Model, v.Year)
	r.specs.Resolve(ticket, request.FromPair(specs, err))

	st := r.specs.State()
	if msg, failed := st.Message(); failed {
		r.printError(msg)
		return
	}
	r.rt.Vehicles.Set(v)
	if specs, ok := st.Value(); ok && specs != nil {
		printSpecs(r.out, r.rt, v.String(), specs)
	}
	fmt.Fprintf(r.out, "Vehicle context set: %s\n", v.String())
}

func (r *Repl) lookupDiagnostic(ctx context.Context, raw string) {
	code := vehicle.NormalizeCode(raw)
	if code == "" {
		r.printError("usage: :diag CODE")
		return
	}

	ticket := r.diag.Invoke()
	rec, err := r.rt.Client.LookupDiagnostic(ctx, code)
	r.diag.Resolve(ticket, request.FromPair(rec, err))

	st := r.diag.State()
	if msg, failed := st.Message(); failed {
		r.printError(msg)
		return
	}
	if rec, ok := st.Value(); ok && rec != nil {
		printDiagnostic(r.out, r.rt, rec)
	}
}

func (r *Repl) uploadFiles(ctx context.Context, paths []string) {
	paths, err := selectPDFs(paths)
	if err != nil {
		r.printError(err.Error())
		return
	}
	files, err := api.ReadFiles(paths)
	if err != nil {
		r.printError(err.Error())
		return
	}

	ticket := r.upload.Invoke()
	res, err := r.rt.Client.UploadManuals(ctx, files)
	r.upload.Resolve(ticket, request.FromPair(res, err))

	st := r.upload.State()
	if msg, failed := st.Message(); failed {
		r.printError(msg)
		return
	}
	if res, ok := st.Value(); ok && res != nil {
		fmt.Fprintln(r.out, r.rt.style(SuccessStyle.Render, "[OK]")+" "+res.Summary())
	}
}

// setURL changes the backend for the rest of the session. The config file
// is not modified.
func (r *Repl) setURL(fields []string) {
	if len(fields) == 0 {
		fmt.Fprintln(r.out, r.rt.Endpoint.BaseURL())
		return
	}
	if err := r.rt.Endpoint.SetBaseURL(fields[0]); err != nil {
		r.printError(err.Error())
		return
	}
	fmt.Fprintf(r.out, "Backend URL set to %s\n", r.rt.Endpoint.BaseURL())
}

func (r *Repl) printHistory() {
	if r.transcript.IsEmpty() {
		fmt.Fprintln(r.out, model.EmptyTranscriptHint)
		return
	}
	for _, m := range r.transcript.Messages() {
		fmt.Fprintf(r.out, "%s: %s\n", m.Role.DisplayName(), m.Preview(100))
	}
}

func (r *Repl) printError(msg string) {
	fmt.Fprintln(r.out, r.rt.style(ErrorStyle.Render, "[ERROR]")+" "+msg)
}

func (r *Repl) printSlotError(msg string, failed bool) {
	if failed {
		r.printError(msg)
	}
}

// splitQuoted splits on whitespace, keeping double-quoted runs together.
func splitQuoted(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote, hasField := false, false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasField = true
		case !inQuote && (r == ' ' || r == '\t'):
			if hasField {
				fields = append(fields, cur.String())
				cur.Reset()
				hasField = false
			}
		default:
			cur.WriteRune(r)
			hasField = true
		}
	}
	if hasField {
		fields = append(fields, cur.String())
	}
	return fields
}
