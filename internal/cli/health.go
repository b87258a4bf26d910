// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// health.go - Backend reachability check.
package cli

import (
	"context"
	"fmt"
	"time"
)

// healthTimeout bounds the probe even when requests are otherwise unbounded.
const healthTimeout = 5 * time.Second

// HandleHealth probes GET /health. An unreachable or unhealthy backend is an
// error so scripts can rely on the exit code.
func HandleHealth(ctx context.Context, rt *Runtime, args Args) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	base := rt.Endpoint.BaseURL()
	status, err := rt.Client.Health(ctx)
	online := err == nil && status.OK()
	if err == nil && !online {
		err = fmt.Errorf("backend reported status %q", status.Status)
	}

	if args.JSON {
		if werr := NewJSONResponse("health", HealthData{BaseURL: base, Online: online, Status: status}).Write(rt.Stdout); werr != nil {
			return werr
		}
		return reported(err)
	}

	if status != nil && !online {
		fmt.Fprintf(rt.Stdout, "%s backend %s at %s\n", rt.style(WarningStyle.Render, "[WARN]"), status.Status, base)
		return err
	}

	if err != nil {
		fmt.Fprintf(rt.Stdout, "%s backend offline at %s\n", rt.style(ErrorStyle.Render, "[FAIL]"), base)
		return failWith(err, "backend unreachable")
	}

	fmt.Fprintf(rt.Stdout, "%s backend %s at %s\n", rt.style(SuccessStyle.Render, "[OK]"), status.Status, base)
	if status.Version != "" {
		fmt.Fprintf(rt.Stdout, "  %-13s%s\n", "Version", status.Version)
	}
	if status.Environment != "" {
		fmt.Fprintf(rt.Stdout, "  %-13s%s\n", "Environment", status.Environment)
	}
	return nil
}
