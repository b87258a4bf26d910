// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the repair assistant backend.
//
// Every network call in wrench goes through Client. It reads the backend URL
// and the vehicle context at call time and turns failures into two error
// types:
//
//   - RequestError: the backend answered with a non-2xx status. Error()
//     returns the response body verbatim.
//   - ClientError: the request never completed, or the 2xx body did not have
//     the expected shape.
//
// # Usage
//
//	client := api.NewClient(endpoint, store, &api.Options{Logger: logger})
//	rec, err := client.LookupDiagnostic(ctx, vehicle.NormalizeCode("p0300"))
package api
