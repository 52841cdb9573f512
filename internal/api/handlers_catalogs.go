// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/models"
)

// handleBiomeUpload decodes and inserts the biome catalog extract.
func (s *Server) handleBiomeUpload(w http.ResponseWriter, r *http.Request) {
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
	result, err := ingest.DecodeBiomes(file)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(result.Docs) == 0 {
		rw.BadRequest("no valid records found in the file")
		return
	}

	inserted, err := s.biomes.Insert(r.Context(), result.Docs)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(ingest.Summarize(result, inserted, s.cfg.Ingest.MaxErrorMessages))
}

func (s *Server) handleBiomeList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, size := s.parsePage(r)
	total, items, err := s.biomes.List(r.Context(), page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.Biome]{Total: total, Page: page, Size: size, Items: items})
}

func (s *Server) handleBiomeByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	doc, err := s.biomes.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("biome not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

func (s *Server) handleBiomeCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	total, err := s.biomes.Count(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]int64{"total_biomas": total})
}

// handleSpecimenUpload decodes and inserts the seized-specimen extract.
func (s *Server) handleSpecimenUpload(w http.ResponseWriter, r *http.Request) {
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
	result, err := ingest.DecodeSpecimens(file)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(result.Docs) == 0 {
		rw.BadRequest("no valid records found in the file")
		return
	}

	inserted, err := s.specimens.Insert(r.Context(), result.Docs)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(ingest.Summarize(result, inserted, s.cfg.Ingest.MaxErrorMessages))
}

func (s *Server) handleSpecimenList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, size := s.parsePage(r)
	total, items, err := s.specimens.List(r.Context(), page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.Specimen]{Total: total, Page: page, Size: size, Items: items})
}

func (s *Server) handleSpecimenByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	doc, err := s.specimens.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("specimen not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

func (s *Server) handleSpecimenCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	total, err := s.specimens.Count(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Count{Count: total})
}

// handleFramingUpload decodes and inserts the legal-framing extract.
func (s *Server) handleFramingUpload(w http.ResponseWriter, r *http.Request) {
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
	result, err := ingest.DecodeFramings(file)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(result.Docs) == 0 {
		rw.BadRequest("no valid records found in the file")
		return
	}

	inserted, err := s.framings.Insert(r.Context(), result.Docs)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(ingest.Summarize(result, inserted, s.cfg.Ingest.MaxErrorMessages))
}

func (s *Server) handleFramingList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, size := s.parsePage(r)
	total, items, err := s.framings.List(r.Context(), page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.Framing]{Total: total, Page: page, Size: size, Items: items})
}

func (s *Server) handleFramingByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	doc, err := s.framings.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("framing not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

func (s *Server) handleFramingCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	total, err := s.framings.Count(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Count{Count: total})
}

// handleFramingByNormAndAdm filters framings by exact norm type and
// administrative flag.
func (s *Server) handleFramingByNormAndAdm(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	normType := r.URL.Query().Get("tp_norma")
	administrative := r.URL.Query().Get("administrativo")
	if normType == "" || administrative == "" {
		rw.BadRequest("tp_norma and administrativo are required")
		return
	}
	page, size := s.parsePage(r)

	items, err := s.framings.ByNormAndAdministrative(r.Context(), normType, administrative, page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if len(items) == 0 {
		rw.NotFound("no framings found")
		return
	}
	rw.Success(items)
}

// handleFramingByNormNumber filters framings by norm number.
func (s *Server) handleFramingByNormNumber(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	normNumber, err := strconv.ParseInt(r.URL.Query().Get("nu_norma"), 10, 64)
	if err != nil {
		rw.BadRequest("nu_norma must be a number")
		return
	}
	page, size := s.parsePage(r)

	items, err := s.framings.ByNormNumber(r.Context(), normNumber, page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if len(items) == 0 {
		rw.NotFound("no framings found")
		return
	}
	rw.Success(items)
}

// handleFramingNormTypeStats counts framings per norm type.
func (s *Server) handleFramingNormTypeStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats, err := s.framings.NormTypeStats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{"estatisticas_por_tipo_norma": stats})
}
