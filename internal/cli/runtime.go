// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// runtime.go - Shared state for one wrench invocation.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// Runtime bundles what command handlers need. Handlers write only to
// Stdout and Stderr so they can be exercised against buffers.
type Runtime struct {
	Config     *config.Config
	ConfigPath string
	Endpoint   *config.Endpoint
	Vehicles   *vehicle.Store
	Client     *api.Client
	Logger     *slog.Logger

	Stdout io.Writer
	Stderr io.Writer

	// Render enables markdown, colors and syntax highlighting.
	Render bool
}

// NewRuntime wires the endpoint, vehicle store and API client for cfg.
// A --url flag replaces the configured base URL for this run only.
func NewRuntime(cfg *config.Config, args Args, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base := cfg.API.BaseURL
	if args.URL != "" {
		base = args.URL
	}
	endpoint, err := config.NewEndpoint(base)
	if err != nil {
		return nil, NewValidationErrorWithExample("url", base, err.Error(), "wrench --url http://localhost:8000 health")
	}

	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil, err
	}

	vehicles := vehicle.NewStore()
	client := api.NewClient(endpoint, vehicles, &api.Options{
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})

	return &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Endpoint:   endpoint,
		Vehicles:   vehicles,
		Client:     client,
		Logger:     logger,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Render:     ColorsEnabled() && !args.JSON,
	}, nil
}

// Run dispatches every command except the TUI, which main owns.
func Run(ctx context.Context, rt *Runtime, cmd Command, args Args) error {
	switch cmd {
	case CmdAsk:
		return HandleAsk(ctx, rt, args)
	case CmdDiag:
		return HandleDiag(ctx, rt, args)
	case CmdVehicle:
		return HandleVehicle(ctx, rt, args)
	case CmdUpload:
		return HandleUpload(ctx, rt, args)
	case CmdHealth:
		return HandleHealth(ctx, rt, args)
	case CmdRepl:
		return HandleRepl(ctx, rt, args)
	case CmdConfig:
		return HandleConfig(rt, args)
	case CmdDevServer:
		return HandleDevServer(ctx, rt, args)
	case CmdVersion:
		return HandleVersion(rt.Stdout, args)
	default:
		return HandleHelp(rt.Stdout, args)
	}
}
