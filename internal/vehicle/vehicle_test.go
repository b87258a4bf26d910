// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vehicle

import (
	"errors"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mk      string
		model   string
		year    string
		want    Context
		wantErr error
	}{
		{"valid", "Toyota", "Camry", "2018", Context{"Toyota", "Camry", 2018}, nil},
		{"trims", "  Honda ", " Civic", " 2020 ", Context{"Honda", "Civic", 2020}, nil},
		{"missing make", "", "Camry", "2018", Context{}, ErrMissingMake},
		{"missing model", "Toyota", "  ", "2018", Context{}, ErrMissingModel},
		{"bad year", "Toyota", "Camry", "twenty", Context{}, ErrInvalidYear},
		{"zero year", "Toyota", "Camry", "0", Context{}, ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.mk, tt.model, tt.year)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("New() error %T is not a *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("New() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContextString(t *testing.T) {
	v := Context{Make: "Toyota", Model: "Camry", Year: 2018}
	if got := v.String(); got != "2018 Toyota Camry" {
		t.Errorf("String() = %q, want %q", got, "2018 Toyota Camry")
	}
	if v.IsZero() {
		t.Error("IsZero() = true for a populated vehicle")
	}
	if !(Context{}).IsZero() {
		t.Error("IsZero() = false for the zero value")
	}
}

func TestStore(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get(); ok {
		t.Fatal("new store should be empty")
	}
	if s.Current() != nil {
		t.Fatal("Current() should be nil for an empty store")
	}

	camry := Context{Make: "Toyota", Model: "Camry", Year: 2018}
	s.Set(camry)
	got, ok := s.Get()
	if !ok || got != camry {
		t.Fatalf("Get() = %+v, %v; want %+v, true", got, ok, camry)
	}

	// Current hands out a copy.
	cur := s.Current()
	cur.Year = 1999
	if got, _ := s.Get(); got.Year != 2018 {
		t.Errorf("mutating Current() leaked into the store: year = %d", got.Year)
	}

	civic := Context{Make: "Honda", Model: "Civic", Year: 2020}
	s.Set(civic)
	if got, _ := s.Get(); got != civic {
		t.Errorf("Set() did not replace the whole value: %+v", got)
	}

	s.Clear()
	if _, ok := s.Get(); ok {
		t.Error("Clear() left a vehicle behind")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(year int) {
			defer wg.Done()
			s.Set(Context{Make: "Ford", Model: "F-150", Year: year})
		}(2000 + i)
		go func() {
			defer wg.Done()
			if v, ok := s.Get(); ok && (v.Make != "Ford" || v.Model != "F-150") {
				t.Errorf("torn read: %+v", v)
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"p0300":   "P0300",
		" P0420 ": "P0420",
		"u0100":   "U0100",
		"":        "",
	}
	for in, want := range tests {
		if got := NormalizeCode(in); got != want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindCodes(t *testing.T) {
	got := FindCodes("Explain p0300 misfire, also P0301 and p0300 again; not X1234")
	want := []string{"P0300", "P0301"}
	if len(got) != len(want) {
		t.Fatalf("FindCodes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FindCodes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestions(t *testing.T) {
	makes := MakeSuggestions()
	if len(makes) != len(KnownMakes) {
		t.Fatalf("MakeSuggestions() returned %d makes, want %d", len(makes), len(KnownMakes))
	}
	for i := 1; i < len(makes); i++ {
		if makes[i-1] > makes[i] {
			t.Fatalf("MakeSuggestions() not sorted: %v", makes)
		}
	}

	models := ModelSuggestions("toyota")
	if len(models) == 0 || models[0] != "Camry" {
		t.Errorf("ModelSuggestions(toyota) = %v", models)
	}
	models[0] = "changed"
	if KnownMakes["Toyota"][0] != "Camry" {
		t.Error("ModelSuggestions() returned the shared slice")
	}
	if ModelSuggestions("Yugo") != nil {
		t.Error("unknown make should have no suggestions")
	}
}
