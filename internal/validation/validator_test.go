// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package validation

import (
	"strings"
	"testing"
)

type sortInput struct {
	SortBy string `validate:"omitempty,oneof=total media"`
	Order  string `validate:"omitempty,oneof=asc desc"`
}

type coordInput struct {
	Latitude  float64 `validate:"min=-90,max=90"`
	Longitude float64 `validate:"min=-180,max=180"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		if err := ValidateStruct(sortInput{SortBy: "total", Order: "desc"}); err != nil {
			t.Fatalf("ValidateStruct() error = %v", err)
		}
	})

	t.Run("empty optional fields pass", func(t *testing.T) {
		if err := ValidateStruct(sortInput{}); err != nil {
			t.Fatalf("ValidateStruct() error = %v", err)
		}
	})

	t.Run("oneof violation names the allowed values", func(t *testing.T) {
		err := ValidateStruct(sortInput{SortBy: "valor"})
		if err == nil {
			t.Fatal("ValidateStruct() expected an error")
		}
		if !strings.Contains(err.Error(), "must be one of") {
			t.Errorf("message %q does not name the constraint", err.Error())
		}
	})

	t.Run("numeric range violations report each field", func(t *testing.T) {
		err := ValidateStruct(coordInput{Latitude: 95, Longitude: -200})
		if err == nil {
			t.Fatal("ValidateStruct() expected an error")
		}
		if len(err.Errors()) != 2 {
			t.Fatalf("got %d field errors, want 2", len(err.Errors()))
		}
		fields := err.Fields()
		if len(fields) != 2 {
			t.Fatalf("got %d detail entries, want 2", len(fields))
		}
		if fields[0]["field"] == "" || fields[0]["message"] == "" {
			t.Errorf("detail entry missing field or message: %v", fields[0])
		}
	})
}
