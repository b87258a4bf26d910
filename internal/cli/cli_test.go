// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing, error classification and the
// small helpers shared by the commands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name: "value flag",
			args: []string{"misfire", "--make", "Toyota"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("make") != "Toyota" {
					t.Errorf("Flag(make) = %q, want %q", p.Flag("make"), "Toyota")
				}
				if p.Positional(0) != "misfire" {
					t.Errorf("Positional(0) = %q, want %q", p.Positional(0), "misfire")
				}
			},
		},
		{
			name: "flag with equals",
			args: []string{"--year=2018"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("year") != "2018" {
					t.Errorf("Flag(year) = %q, want %q", p.Flag("year"), "2018")
				}
			},
		},
		{
			name: "boolean flag at end",
			args: []string{"camry.pdf", "--force"},
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be true")
				}
				if !p.HasFlag("--force") {
					t.Error("HasFlag(--force) should be true")
				}
			},
		},
		{
			name: "explicit boolean value",
			args: []string{"--force=false"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be false")
				}
				if !p.HasFlag("force") {
					t.Error("HasFlag(force) should be true")
				}
			},
		},
		{
			name: "double dash ends flags",
			args: []string{"--", "--not-a-flag", "x"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
				if p.Positional(0) != "--not-a-flag" {
					t.Errorf("Positional(0) = %q", p.Positional(0))
				}
			},
		},
		{
			name: "out of range positional",
			args: []string{"one"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(3) != "" {
					t.Errorf("Positional(3) = %q, want empty", p.Positional(3))
				}
				if len(p.PositionalFrom(5)) != 0 {
					t.Error("PositionalFrom(5) should be empty")
				}
				if p.FlagOrDefault("db", "dev.db") != "dev.db" {
					t.Error("FlagOrDefault should fall back")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, NewArgParser(tt.args))
		})
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd Command
		want    Args
	}{
		{
			name:    "no args starts the TUI",
			args:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "ask with vehicle",
			args:    []string{"ask", "How", "do", "I", "fix", "P0300", "--make", "Toyota", "--model", "Camry", "--year", "2018"},
			wantCmd: CmdAsk,
			want:    Args{Query: "How do I fix P0300", Make: "Toyota", Model: "Camry", Year: "2018"},
		},
		{
			name:    "global json before command",
			args:    []string{"--json", "diag", "p0420"},
			wantCmd: CmdDiag,
			want:    Args{JSON: true, Code: "p0420"},
		},
		{
			name:    "dtc alias",
			args:    []string{"dtc", "P0171"},
			wantCmd: CmdDiag,
			want:    Args{Code: "P0171"},
		},
		{
			name:    "multi-word vehicle",
			args:    []string{"vehicle", "Land Rover", "Range Rover", "2015"},
			wantCmd: CmdVehicle,
			want:    Args{Make: "Land Rover", Model: "Range Rover", Year: "2015"},
		},
		{
			name:    "upload",
			args:    []string{"upload", "a.pdf", "b.pdf", "-q"},
			wantCmd: CmdUpload,
			want:    Args{Quiet: true, Files: []string{"a.pdf", "b.pdf"}},
		},
		{
			name:    "url flag with equals",
			args:    []string{"--url=http://10.0.0.5:8000", "health"},
			wantCmd: CmdHealth,
			want:    Args{URL: "http://10.0.0.5:8000"},
		},
		{
			name:    "status alias",
			args:    []string{"status", "--url", "http://h:1"},
			wantCmd: CmdHealth,
			want:    Args{URL: "http://h:1"},
		},
		{
			name:    "chat alias",
			args:    []string{"chat", "-v"},
			wantCmd: CmdRepl,
			want:    Args{Verbose: true},
		},
		{
			name:    "config set",
			args:    []string{"config", "set", "api.base_url", "http://h:1"},
			wantCmd: CmdConfig,
			want:    Args{Subcommand: "set", ConfigKey: "api.base_url", ConfigVal: "http://h:1"},
		},
		{
			name:    "devserver flags",
			args:    []string{"serve", "--addr", "0.0.0.0:9000", "--db", "/tmp/x.db"},
			wantCmd: CmdDevServer,
			want:    Args{Addr: "0.0.0.0:9000", DB: "/tmp/x.db"},
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "unknown command",
			args:    []string{"frobnicate", "now"},
			wantCmd: CmdHelp,
			want:    Args{Raw: []string{"frobnicate", "now"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, got := ParseArgs(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("command = %v, want %v", cmd, tt.wantCmd)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("args = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	for cmd, want := range map[Command]string{
		CmdTUI:       "tui",
		CmdAsk:       "ask",
		CmdDevServer: "devserver",
		CmdHelp:      "help",
	} {
		if got := cmd.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", cmd, got, want)
		}
	}
}

func TestHandleHelp(t *testing.T) {
	var buf bytes.Buffer
	if err := HandleHelp(&buf, Args{}); err != nil {
		t.Fatalf("HandleHelp() error = %v", err)
	}
	if !strings.Contains(buf.String(), "wrench diag CODE") {
		t.Error("usage should list the diag command")
	}

	err := HandleHelp(&bytes.Buffer{}, Args{Raw: []string{"frobnicate"}})
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("unknown command exit code = %d, want %d", GetExitCode(err), ExitUsageError)
	}
}

func TestHandleVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := HandleVersion(&buf, Args{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "wrench "+Version) {
		t.Errorf("version output = %q", buf.String())
	}

	buf.Reset()
	if err := HandleVersion(&buf, Args{JSON: true}); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Success bool        `json:"success"`
		Data    VersionData `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || resp.Data.Version != Version {
		t.Errorf("unexpected version response %+v", resp)
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	_, vehicleErr := vehicle.New("", "Camry", "2018")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("code", "", "required"), ExitUsageError},
		{"vehicle validation", vehicleErr, ExitUsageError},
		{"tty", &TTYRequiredError{Operation: "chat"}, ExitUsageError},
		{"config", config.ValidateErrors{{Field: "api.base_url", Message: "empty"}}, ExitConfigError},
		{"timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"not found", &api.RequestError{StatusCode: 404, Body: "missing"}, ExitNotFoundError},
		{"server error", &api.RequestError{StatusCode: 500, Body: "boom"}, ExitBackendError},
		{"transport", &api.ClientError{Type: api.ErrTypeTransport, Message: "cannot reach"}, ExitNetworkError},
		{"invalid input", &api.ClientError{Type: api.ErrTypeInvalidInput, Message: "bad"}, ExitUsageError},
		{"wrapped by failWith", failWith(&api.RequestError{StatusCode: 404}, "Lookup failed"), ExitNotFoundError},
		{"reported", reported(&api.RequestError{StatusCode: 503}), ExitBackendError},
		{"generic", errors.New("something"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFailWith_UsesFallbackForEmptyMessage(t *testing.T) {
	err := failWith(&api.RequestError{StatusCode: 500, Body: ""}, "Lookup failed")
	if err.Error() != "Lookup failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "Lookup failed")
	}

	err = failWith(&api.RequestError{StatusCode: 500, Body: "Query failed: index missing"}, "Failed to query")
	if err.Error() != "Query failed: index missing" {
		t.Errorf("Error() = %q", err.Error())
	}

	if failWith(nil, "x") != nil {
		t.Error("failWith(nil) should be nil")
	}
}

func TestDisplayError(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		DisplayError(&buf, "diag", errors.New("Diagnostic code not found"), false)
		if !strings.Contains(buf.String(), "[ERROR]") || !strings.Contains(buf.String(), "Diagnostic code not found") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		DisplayError(&buf, "diag", &api.RequestError{StatusCode: 404, Body: "not found"}, true)

		var resp struct {
			Success bool      `json:"success"`
			Error   *string   `json:"error"`
			Data    ErrorData `json:"data"`
		}
		if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}
		if resp.Success || resp.Error == nil {
			t.Errorf("expected failure response, got %+v", resp)
		}
		if resp.Data.ExitCode != ExitNotFoundError || resp.Data.StatusCode != 404 {
			t.Errorf("data = %+v", resp.Data)
		}
	})

	t.Run("already reported", func(t *testing.T) {
		var buf bytes.Buffer
		DisplayError(&buf, "health", reported(errors.New("offline")), false)
		if buf.Len() != 0 {
			t.Errorf("reported error should not be printed again, got %q", buf.String())
		}
	})
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestSelectPDFs(t *testing.T) {
	got, err := selectPDFs([]string{"a.pdf", "B.PDF", "a.pdf"})
	if err != nil {
		t.Fatalf("selectPDFs() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.pdf", "B.PDF"}) {
		t.Errorf("selectPDFs() = %v", got)
	}

	if _, err := selectPDFs(nil); GetExitCode(err) != ExitUsageError {
		t.Errorf("empty selection should be a usage error, got %v", err)
	}
	if _, err := selectPDFs([]string{"a.pdf", "notes.txt"}); err == nil {
		t.Error("non-PDF selection should fail")
	}
}

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`:vehicle Toyota Camry 2018`, []string{":vehicle", "Toyota", "Camry", "2018"}},
		{`:vehicle "Land Rover" "Range Rover"  2015`, []string{":vehicle", "Land Rover", "Range Rover", "2015"}},
		{`:upload ""`, []string{":upload", ""}},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := splitQuoted(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitQuoted(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompleteCommand(t *testing.T) {
	if got := completeCommand(":cl"); !reflect.DeepEqual(got, []string{":clear-vehicle"}) {
		t.Errorf("completeCommand(:cl) = %v", got)
	}
	if got := completeCommand("what"); got != nil {
		t.Errorf("plain text should not complete, got %v", got)
	}
}

// =============================================================================
// RUNTIME
// =============================================================================

func TestNewRuntime_Render(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	prev := ColorsEnabled()
	t.Cleanup(func() { ForceColorsEnabled(prev) })

	tests := []struct {
		name   string
		colors bool
		json   bool
		want   bool
	}{
		{"colors", true, false, true},
		{"colors with json", true, true, false},
		{"no colors", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ForceColorsEnabled(tt.colors)
			rt, err := NewRuntime(config.Default(), Args{JSON: tt.json}, nil)
			if err != nil {
				t.Fatalf("NewRuntime() error = %v", err)
			}
			if rt.Render != tt.want {
				t.Errorf("Render = %v, want %v", rt.Render, tt.want)
			}
			if got := rt.style(strings.ToUpper, "ok"); tt.want != (got == "OK") {
				t.Errorf("style() = %q with Render %v", got, rt.Render)
			}
		})
	}
}

func TestNewRuntime_URLOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rt, err := NewRuntime(config.Default(), Args{URL: "http://10.1.1.1:8000/"}, nil)
	if err != nil {
		t.Fatalf("NewRuntime() error = %v", err)
	}
	if got := rt.Endpoint.BaseURL(); got != "http://10.1.1.1:8000" {
		t.Errorf("BaseURL() = %q", got)
	}

	_, err = NewRuntime(config.Default(), Args{URL: "nope"}, nil)
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("GetExitCode(%v) = %d, want usage error", err, GetExitCode(err))
	}
}
