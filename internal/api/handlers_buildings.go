// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/models"
)

// handleBuildingUpload decodes and inserts the IBAMA building extract.
// DMS coordinates are converted to a GeoJSON point during decoding.
func (s *Server) handleBuildingUpload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	file, header, ok := s.formFile(w, r, rw)
	if !ok {
		return
	}
	defer file.Close()

	if err := ingest.RequireCSV(header.Filename); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	result, err := ingest.DecodeBuildings(file)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(result.Docs) == 0 {
		rw.BadRequest("no valid records found in the file")
		return
	}

	inserted, err := s.buildings.Insert(r.Context(), result.Docs)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(ingest.Summarize(result, inserted, s.cfg.Ingest.MaxErrorMessages))
}

func (s *Server) handleBuildingList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, size := s.parsePage(r)
	total, items, err := s.buildings.List(r.Context(), page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.Building]{Total: total, Page: page, Size: size, Items: items})
}

func (s *Server) handleBuildingByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	doc, err := s.buildings.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("building not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

func (s *Server) handleBuildingCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	total, err := s.buildings.Count(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Count{Count: total})
}

// handleBuildingNearby returns the closest building within max_distance
// meters, served by the 2dsphere index.
func (s *Server) handleBuildingNearby(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	latitude, err := queryFloat(r, "lat")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	longitude, err := queryFloat(r, "long")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	maxDistance := queryInt(r, "max_distance", defaultNearbyRadiusMeters)

	doc, err := s.buildings.Nearest(r.Context(), longitude, latitude, maxDistance)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("no building found within the given distance")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

// handleBuildingMunicipalityStats counts buildings per municipality.
func (s *Server) handleBuildingMunicipalityStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats, err := s.buildings.MunicipalityStats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{"estatisticas_por_municipio": stats})
}
