// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLiveness(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadiness(t *testing.T) {
	t.Run("ready when storage answers", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("unavailable when storage is unreachable", func(t *testing.T) {
		s := newTestServer(t, func(s *Server) {
			s.pinger = &mockPinger{err: errors.New("server selection timeout")}
		})

		rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
		_, apiErr := decodeResponse(t, rec)
		if apiErr == nil || apiErr.Code != ErrCodeServiceUnavailable {
			t.Fatalf("error = %+v, want code %s", apiErr, ErrCodeServiceUnavailable)
		}
	})
}
