// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/logging"
	"github.com/dferraz/fiscalis/internal/models"
	"github.com/dferraz/fiscalis/internal/report"
)

// formFile extracts the uploaded CSV from the multipart form, bounding the
// request body at the configured upload limit.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, rw *ResponseWriter) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		rw.BadRequest("expected a multipart upload with a \"file\" field")
		return nil, nil, false
	}
	return file, header, true
}

// handleOffenderUpload runs the offender merge pipeline over the uploaded
// infraction extract.
func (s *Server) handleOffenderUpload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	file, header, ok := s.formFile(w, r, rw)
	if !ok {
		return
	}
	defer file.Close()

	log.Info().Str("file", header.Filename).Msg("Offender ingestion started")
	summary, err := s.ingestor.Run(r.Context(), file, header.Filename)
	if err != nil {
		var fileErr *ingest.FileError
		if errors.As(err, &fileErr) {
			rw.BadRequest(fileErr.Reason)
			return
		}
		log.Error().Err(err).Msg("Offender ingestion failed")
		rw.DatabaseError(err)
		return
	}

	log.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("errors", summary.ErrorCount).
		Msg("Offender ingestion finished")
	rw.Success(summary)
}

// handleOffenderList lists offenders with pagination and optional
// case-insensitive name/state/municipality filters.
func (s *Server) handleOffenderList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, size := s.parsePage(r)
	filter := offenderFilter(r)

	total, items, err := s.offenders.List(r.Context(), filter, page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.Offender]{Total: total, Page: page, Size: size, Items: items})
}

// handleOffenderCount counts offenders matching the same filters as the
// listing.
func (s *Server) handleOffenderCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	total, err := s.offenders.Count(r.Context(), offenderFilter(r))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]int64{"total_infratores": total})
}

// handleOffenderStats returns offender totals grouped by state and by
// infraction area.
func (s *Server) handleOffenderStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats, err := s.offenders.Stats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(stats)
}

// handleOffenderReport streams the offenders-per-state bar chart. With no
// offenders stored it answers with a JSON message instead of an image.
func (s *Server) handleOffenderReport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	counts, err := s.offenders.CountByState(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if len(counts) == 0 {
		rw.Success(map[string]string{"message": "no offenders available for the report"})
		return
	}
	rw.PNG("offenders_by_state.png", func(w http.ResponseWriter) error {
		return report.OffendersByState(w, counts)
	})
}

func offenderFilter(r *http.Request) database.OffenderFilter {
	q := r.URL.Query()
	return database.OffenderFilter{
		Name:         q.Get("nome"),
		State:        q.Get("estado"),
		Municipality: q.Get("municipio"),
	}
}
