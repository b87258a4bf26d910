// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// lookup.go - Diagnostic code and vehicle specification lookups.
package cli

import (
	"context"

	"github.com/jeranaias/wrench-tui/internal/request"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// HandleDiag looks up one trouble code. The code is trimmed and upper-cased
// before the request.
func HandleDiag(ctx context.Context, rt *Runtime, args Args) error {
	code := vehicle.NormalizeCode(args.Code)
	if code == "" {
		return ErrMissingArgument("code", "wrench diag P0300")
	}
	if !vehicle.IsStandardCode(code) {
		rt.Logger.Debug("non-standard code format", "code", code)
	}

	rec, err := rt.Client.LookupDiagnostic(ctx, code)
	if err != nil {
		return failWith(err, request.FallbackLookup)
	}

	if args.JSON {
		return NewJSONResponse("diag", rec).Write(rt.Stdout)
	}
	printDiagnostic(rt.Stdout, rt, rec)
	return nil
}

// HandleVehicle looks up specifications for make, model and year.
func HandleVehicle(ctx context.Context, rt *Runtime, args Args) error {
	v, err := vehicle.New(args.Make, args.Model, args.Year)
	if err != nil {
		return err
	}

	specs, err := rt.Client.LookupVehicleInfo(ctx, v.Make, v.Model, v.Year)
	if err != nil {
		return failWith(err, request.FallbackLookup)
	}

	if args.JSON {
		return NewJSONResponse("vehicle", specs).Write(rt.Stdout)
	}
	printSpecs(rt.Stdout, rt, v.String(), specs)
	return nil
}
