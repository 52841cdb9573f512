// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParsePage(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&size=25", 3, 25},
		{"zero page falls back to first", "page=0", 1, 10},
		{"negative size falls back to default", "size=-5", 1, 10},
		{"size capped at maximum", "size=500", 1, 100},
		{"non-numeric values fall back", "page=abc&size=xyz", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/?"+tt.query, nil)
			page, size := s.parsePage(req)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("parsePage() = %d/%d, want %d/%d", page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestQueryDate(t *testing.T) {
	t.Run("absent parameter is nil without error", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		d, err := queryDate(req, "data")
		if err != nil || d != nil {
			t.Fatalf("queryDate() = %v, %v, want nil, nil", d, err)
		}
	})

	t.Run("valid date parses", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?data=2023-05-10", nil)
		d, err := queryDate(req, "data")
		if err != nil {
			t.Fatalf("queryDate() error = %v", err)
		}
		if d == nil || !d.Equal(time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("queryDate() = %v, want 2023-05-10", d)
		}
	})

	t.Run("malformed date errors", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?data=10/05/2023", nil)
		if _, err := queryDate(req, "data"); err == nil {
			t.Fatal("queryDate() expected an error")
		}
	})
}

func TestEndOfDay(t *testing.T) {
	d := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	got := endOfDay(d)
	want := time.Date(2023, 5, 10, 23, 59, 59, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("endOfDay() = %v, want %v", got, want)
	}
}

func TestParseObjectID(t *testing.T) {
	if _, err := parseObjectID("64a000000000000000000001"); err != nil {
		t.Errorf("parseObjectID() unexpected error: %v", err)
	}
	if _, err := parseObjectID("not-hex"); err == nil {
		t.Error("parseObjectID() expected an error for a malformed id")
	}
	if _, err := parseObjectID(""); err == nil {
		t.Error("parseObjectID() expected an error for an empty id")
	}
}
