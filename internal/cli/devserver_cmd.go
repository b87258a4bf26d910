// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// devserver_cmd.go - Run the local development backend.
package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/wrench-tui/internal/devserver"
)

// HandleDevServer serves the backend API locally until ctx is cancelled.
// --addr and --db override the [devserver] settings. Request logs go to
// rt.Logger, which main sets up to write JSON.
func HandleDevServer(ctx context.Context, rt *Runtime, args Args) error {
	cfg := rt.Config.DevServer

	addr := cfg.Addr
	if args.Addr != "" {
		addr = args.Addr
	}
	dbPath := args.DB
	if dbPath == "" {
		p, err := rt.Config.DevServerDBPath()
		if err != nil {
			return err
		}
		dbPath = p
	}

	srv, err := devserver.New(devserver.Options{
		Addr:        addr,
		DBPath:      dbPath,
		RateLimit:   cfg.RateLimit,
		Burst:       cfg.Burst,
		Environment: cfg.Environment,
		Version:     Version,
		Logger:      rt.Logger,
	})
	if err != nil {
		return NewCommandError("devserver", "start", err)
	}
	defer srv.Close()

	if !args.Quiet {
		fmt.Fprintf(rt.Stderr, "wrench dev backend on http://%s (store: %s)\n", addr, dbPath)
	}
	return srv.Run(ctx)
}
