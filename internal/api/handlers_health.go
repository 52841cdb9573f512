// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"net/http"
)

// handleLiveness answers as long as the process is serving requests.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]string{"status": "ok"})
}

// handleReadiness verifies storage connectivity before answering ready.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := s.pinger.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("storage is unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
