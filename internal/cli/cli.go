// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for wrench.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdDiag
	CmdVehicle
	CmdUpload
	CmdHealth
	CmdRepl
	CmdConfig
	CmdDevServer
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdDiag:
		return "diag"
	case CmdVehicle:
		return "vehicle"
	case CmdUpload:
		return "upload"
	case CmdHealth:
		return "health"
	case CmdRepl:
		return "repl"
	case CmdConfig:
		return "config"
	case CmdDevServer:
		return "devserver"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL     string // --url overrides api.base_url for this run
	JSON    bool   // Output in JSON format
	Quiet   bool
	Verbose bool

	// ask
	Query string
	Make  string
	Model string
	Year  string

	// diag
	Code string

	// upload
	Files []string

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// devserver
	Addr string
	DB   string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `wrench - vehicle repair assistant

Ask repair questions against your service manuals, look up trouble codes and
vehicle specs, and upload PDF manuals to the retrieval backend.

Usage:
  wrench                          Start the TUI (default)
  wrench ask "question"           Ask a single question
    --make MAKE --model MODEL --year YEAR
                                  Attach a vehicle to the question
  wrench diag CODE                Look up a diagnostic trouble code
  wrench vehicle MAKE MODEL YEAR  Look up vehicle specifications
  wrench upload FILE.pdf...       Upload service manuals for ingestion
  wrench health                   Check the backend
  wrench repl                     Line-oriented chat with history
  wrench config [show|path|init|get|set]
                                  Configuration
  wrench devserver                Run a local development backend
    --addr HOST:PORT              Listen address (default from config)
    --db PATH                     SQLite chunk store path
  wrench version                  Show version
  wrench help                     Show this help

Global flags:
  --url URL                       Backend base URL for this run
  --json                          Output in JSON format
  -v, --verbose                   Debug logging to stderr
  -q, --quiet                     Only log errors

Examples:
  wrench ask "How do I diagnose a P0300 misfire?" --make Toyota --model Camry --year 2018
  wrench diag p0420
  wrench vehicle "Land Rover" "Range Rover" 2015
  wrench upload camry-2018-service.pdf camry-2018-wiring.pdf
  wrench --url http://10.0.0.5:8000 health
  wrench config set api.base_url http://10.0.0.5:8000

Environment:
  WRENCH_API_URL, WRENCH_API_TIMEOUT, WRENCH_THEME, WRENCH_LOG_LEVEL,
  WRENCH_LOG_FILE, WRENCH_DEVSERVER_ADDR

Configuration is read from ~/.wrench/config.toml (or config.json).
`

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments (without the program name).
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask", "a":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "diag", "dtc", "code":
		p := NewArgParser(remaining)
		parsedArgs.Code = p.Positional(0)
		return CmdDiag, parsedArgs

	case "vehicle", "specs":
		p := NewArgParser(remaining)
		parsedArgs.Make = p.Positional(0)
		parsedArgs.Model = p.Positional(1)
		parsedArgs.Year = p.Positional(2)
		return CmdVehicle, parsedArgs

	case "upload", "ingest":
		parsedArgs.Files = NewArgParser(remaining).PositionalFrom(0)
		return CmdUpload, parsedArgs

	case "health", "status", "s":
		return CmdHealth, parsedArgs

	case "repl", "chat":
		return CmdRepl, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "devserver", "serve":
		p := NewArgParser(remaining)
		parsedArgs.Addr = p.Flag("addr")
		parsedArgs.DB = p.Flag("db")
		return CmdDevServer, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsedArgs.URL = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--url=") {
				parsedArgs.URL = strings.TrimPrefix(arg, "--url=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments. Every positional
// becomes part of the question.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Make = p.Flag("make")
	args.Model = p.Flag("model")
	args.Year = p.Flag("year")
	args.Query = JoinPositionalArgs(p, 0)
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}

// =============================================================================
// USAGE AND VERSION
// =============================================================================

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// VersionData is the JSON form of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func versionData() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", versionData()).Write(w)
	}
	v := versionData()
	fmt.Fprintf(w, "wrench %s\n", v.Version)
	fmt.Fprintf(w, "  Commit:   %s\n", v.GitCommit)
	fmt.Fprintf(w, "  Built:    %s\n", v.BuildDate)
	fmt.Fprintf(w, "  Go:       %s\n", v.GoVersion)
	fmt.Fprintf(w, "  Platform: %s\n", v.Platform)
	return nil
}

// HandleHelp prints usage. An unknown command is reported first.
func HandleHelp(w io.Writer, args Args) error {
	PrintUsage(w)
	if len(args.Raw) > 0 {
		return NewValidationErrorWithExample("command", args.Raw[0], "unknown command", "wrench help")
	}
	return nil
}
