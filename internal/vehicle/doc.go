// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vehicle holds the vehicle context that scopes repair queries.
//
// # Key Types
//
//   - Context: a make/model/year triple
//   - Store: the single process-wide holder of the selected vehicle
//   - ValidationError: wraps a sentinel with the offending field
//
// # Usage
//
//	store := vehicle.NewStore()
//	v, err := vehicle.New("Toyota", "Camry", "2018")
//	if err == nil {
//	    store.Set(v)
//	}
//	if cur, ok := store.Get(); ok {
//	    fmt.Println(cur) // 2018 Toyota Camry
//	}
//
// Diagnostic trouble codes are normalized with NormalizeCode before they are
// sent to the backend.
package vehicle
