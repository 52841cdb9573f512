// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parsePage extracts 1-based page/size query parameters, applying the
// configured default and maximum page size.
func (s *Server) parsePage(r *http.Request) (page, size int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	size = queryInt(r, "size", s.cfg.API.DefaultPageSize)
	if size < 1 {
		size = s.cfg.API.DefaultPageSize
	}
	if size > s.cfg.API.MaxPageSize {
		size = s.cfg.API.MaxPageSize
	}
	return page, size
}

// queryInt returns the integer query parameter or the default.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryFloat returns the float query parameter, which must be present.
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing required query parameter %q", name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for query parameter %q", name)
	}
	return f, nil
}

// queryDate parses an ISO date (YYYY-MM-DD) query parameter. Returns nil
// when the parameter is absent.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date for %q, expected YYYY-MM-DD", name)
	}
	return &t, nil
}

// parseObjectID validates and decodes a path id parameter.
func parseObjectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid document id %q", raw)
	}
	return id, nil
}

// endOfDay shifts a parsed date to the inclusive end of its calendar day.
func endOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Second)
}
