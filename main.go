// wrench TUI - A terminal assistant for vehicle repair questions.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jeranaias/wrench-tui/internal/cli"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/logging"
	"github.com/jeranaias/wrench-tui/internal/ui/chat"
	"github.com/jeranaias/wrench-tui/internal/ui/styles"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()
	os.Exit(run(cmd, args))
}

// run executes one command and returns the process exit code.
func run(cmd cli.Command, args cli.Args) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Trace context travels with backend requests even without an exporter.
	otel.SetTextMapPropagator(propagation.TraceContext{})

	cfg, cfgErr := config.Load()
	if cfg == nil {
		cfg = config.Default()
	}

	logger, closeLog, err := setupLogging(cmd, args, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (logging disabled)\n", err)
	}
	defer closeLog()
	if cfgErr != nil {
		logger.Warn("using default configuration", "error", cfgErr)
		if cmd != cli.CmdTUI && !args.Quiet {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
		}
	}

	rt, err := cli.NewRuntime(cfg, args, logger)
	if err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}

	if cmd == cli.CmdTUI {
		err = runTUI(ctx, rt)
	} else {
		err = cli.Run(ctx, rt, cmd, args)
	}
	if err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// setupLogging picks the log destination for the command: the TUI owns the
// terminal so it logs to a file, the dev server logs JSON to stderr and
// everything else logs warnings to stderr.
func setupLogging(cmd cli.Command, args cli.Args, cfg *config.Config) (*slog.Logger, func() error, error) {
	opts := logging.Options{
		Mode:    logging.ModeCLI,
		Level:   cfg.Logging.Level,
		Verbose: args.Verbose,
		Quiet:   args.Quiet,
	}
	switch cmd {
	case cli.CmdTUI:
		path, err := cfg.LogFilePath()
		if err != nil {
			return logging.Discard(), func() error { return nil }, err
		}
		opts.Mode = logging.ModeTUI
		opts.File = path
	case cli.CmdDevServer:
		opts.Mode = logging.ModeServer
	}
	return logging.Setup(opts)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(ctx context.Context, rt *cli.Runtime) error {
	if err := cli.RequiresTTY("the TUI"); err != nil {
		return err
	}
	cfg := rt.Config

	m := chat.New(chat.Options{
		Theme:    styles.NewTheme(cfg.UI.Theme),
		Gateway:  rt.Client,
		Endpoint: rt.Endpoint,
		Vehicles: rt.Vehicles,
		Logger:   rt.Logger,
		FormDefaults: vehicle.Context{
			Make:  cfg.Vehicle.Make,
			Model: cfg.Vehicle.Model,
			Year:  cfg.Vehicle.Year,
		},
		ShowSources:    cfg.UI.ShowSources,
		RenderMarkdown: cfg.UI.RenderMarkdown,
		WordWrap:       cfg.UI.WordWrap,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Edits to the config file retarget the backend while the TUI runs.
	if path, err := config.ActivePath(); err != nil {
		rt.Logger.Warn("config watch disabled", "error", err)
	} else if watcher, err := config.StartWatcher(path, func(next *config.Config) {
		if next.API.BaseURL == rt.Endpoint.BaseURL() {
			return
		}
		if err := rt.Endpoint.SetBaseURL(next.API.BaseURL); err != nil {
			rt.Logger.Warn("ignoring reloaded base URL", "url", next.API.BaseURL, "error", err)
			return
		}
		p.Send(chat.BaseURLChangedMsg{URL: rt.Endpoint.BaseURL()})
	}, rt.Logger); err != nil {
		rt.Logger.Warn("config watch disabled", "path", path, "error", err)
	} else {
		defer watcher.Close()
	}

	rt.Logger.Info("tui started", "version", Version, "base_url", rt.Endpoint.BaseURL())
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
