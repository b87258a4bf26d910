// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question against the repair knowledge base.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/request"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// HandleAsk sends one query and prints the answer. Vehicle flags, when any
// are given, must describe a complete vehicle; it is attached to the query.
func HandleAsk(ctx context.Context, rt *Runtime, args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return ErrMissingArgument("question", `wrench ask "How do I diagnose a P0300 misfire?"`)
	}

	if args.Make != "" || args.Model != "" || args.Year != "" {
		v, err := vehicle.New(args.Make, args.Model, args.Year)
		if err != nil {
			return err
		}
		rt.Vehicles.Set(v)
	}

	rt.Logger.Debug("asking", "length", len(query), "vehicle", rt.Vehicles.Current())
	resp, err := rt.Client.Query(ctx, query)
	if err != nil {
		return failWith(err, request.FallbackQuery)
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Query:   query,
			Vehicle: rt.Vehicles.Current(),
			Answer:  resp,
		}).Write(rt.Stdout)
	}

	if v, ok := rt.Vehicles.Get(); ok && rt.Render {
		fmt.Fprintln(rt.Stdout, DimStyle.Render("Vehicle: "+v.String()))
	}
	printAnswer(rt.Stdout, rt, newRenderer(rt), resp)
	return nil
}
