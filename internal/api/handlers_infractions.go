// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/models"
	"github.com/dferraz/fiscalis/internal/report"
	"github.com/dferraz/fiscalis/internal/validation"
)

// nearbyRequest bounds the proximity search inputs.
type nearbyRequest struct {
	Latitude  float64 `validate:"min=-90,max=90"`
	Longitude float64 `validate:"min=-180,max=180"`
	Radius    int     `validate:"min=1"`
}

// detailedRequest validates the sort inputs of the detailed listing.
type detailedRequest struct {
	SortBy string `validate:"omitempty,oneof=dat_hora_auto_infracao val_auto_infracao"`
	Order  string `validate:"omitempty,oneof=asc desc"`
}

// biomeStatsRequest validates the sort inputs of the biome statistics.
type biomeStatsRequest struct {
	SortBy string `validate:"omitempty,oneof=total_infracoes media_valor"`
	Order  string `validate:"omitempty,oneof=asc desc"`
}

// defaultNearbyRadiusMeters bounds proximity searches when the caller
// gives no radius.
const defaultNearbyRadiusMeters = 10000

// handleInfractionUpload decodes and inserts the infraction-notice extract.
func (s *Server) handleInfractionUpload(w http.ResponseWriter, r *http.Request) {
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
	result, err := ingest.DecodeInfractions(file)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(result.Docs) == 0 {
		rw.BadRequest("no valid records found in the file")
		return
	}

	inserted, err := s.infractions.Insert(r.Context(), result.Docs)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(ingest.Summarize(result, inserted, s.cfg.Ingest.MaxErrorMessages))
}

// handleInfractionCount returns the collection count.
func (s *Server) handleInfractionCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	total, err := s.infractions.Count(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Count{Count: total})
}

// handleInfractionList returns one page of infraction notices.
func (s *Server) handleInfractionList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, size := s.parsePage(r)

	total, items, err := s.infractions.List(r.Context(), page, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.Infraction]{Total: total, Page: page, Size: size, Items: items})
}

// handleInfractionByID fetches one infraction notice, validating the id
// before touching storage.
func (s *Server) handleInfractionByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := parseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	doc, err := s.infractions.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("infraction notice not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

// handleInfractionByDate lists the notices issued on one calendar day.
func (s *Server) handleInfractionByDate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := r.URL.Query().Get("data")
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		rw.BadRequest("invalid date format, expected YYYY-MM-DD")
		return
	}
	items, err := s.infractions.ByDate(r.Context(), day)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(items)
}

// handleInfractionNearby returns the closest notice within the radius.
func (s *Server) handleInfractionNearby(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	longitude, err := queryFloat(r, "longitude")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	latitude, err := queryFloat(r, "latitude")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	radius := queryInt(r, "radius", defaultNearbyRadiusMeters)

	if verr := validation.ValidateStruct(nearbyRequest{Latitude: latitude, Longitude: longitude, Radius: radius}); verr != nil {
		rw.ValidationError("invalid query parameters", verr.Fields())
		return
	}

	doc, err := s.infractions.Nearest(r.Context(), longitude, latitude, float64(radius))
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("no infraction notice found within the given distance")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

// handleInfractionReport streams the infractions-per-health-effect chart.
func (s *Server) handleInfractionReport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	counts, err := s.infractions.HealthEffectCounts(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if len(counts) == 0 {
		rw.Success(map[string]string{"message": "no infraction notices available for the report"})
		return
	}
	rw.PNG("infractions_by_health_effect.png", func(w http.ResponseWriter) error {
		return report.InfractionsByHealthEffect(w, counts)
	})
}

// handleInfractionWithFramings joins one notice with its legal framings.
func (s *Server) handleInfractionWithFramings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sequence, err := strconv.ParseInt(chi.URLParam(r, "sequence"), 10, 64)
	if err != nil {
		rw.BadRequest("invalid infraction sequence")
		return
	}
	doc, err := s.infractions.WithFramings(r.Context(), sequence)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("infraction notice not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(doc)
}

// maxFramingBatch bounds the comma-separated sequence list of the batch
// framing lookup.
const maxFramingBatch = 100

// handleInfractionWithFramingsMany joins a batch of notices with their
// framings. Sequences are passed comma-separated; unknown ones are
// skipped.
func (s *Server) handleInfractionWithFramingsMany(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := r.URL.Query().Get("seq_auto_infracoes")
	if raw == "" {
		rw.BadRequest("missing required query parameter \"seq_auto_infracoes\"")
		return
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxFramingBatch {
		parts = parts[:maxFramingBatch]
	}
	sequences := make([]int64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			rw.BadRequest("seq_auto_infracoes must be a comma-separated list of numbers")
			return
		}
		sequences = append(sequences, n)
	}

	results, err := s.infractions.WithFramingsMany(r.Context(), sequences)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{
		"total_solicitados": len(sequences),
		"total_encontrados": len(results),
		"resultados":        results,
	})
}

// handleSpecimensByBiome returns notices in a biome and date range, each
// joined with its seized specimens.
func (s *Server) handleSpecimensByBiome(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	from, err := queryDate(r, "data_inicio")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	to, err := queryDate(r, "data_fim")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if from == nil || to == nil {
		rw.BadRequest("data_inicio and data_fim are required")
		return
	}
	biome := r.URL.Query().Get("bioma")
	if biome == "" {
		rw.BadRequest("missing required query parameter \"bioma\"")
		return
	}
	page, size := s.parsePage(r)

	results, err := s.infractions.SpecimensByBiome(r.Context(), *from, endOfDay(*to), biome, (page-1)*size, size)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if len(results) == 0 {
		rw.NotFound("no infraction notices found for the given biome and period")
		return
	}
	rw.Success(results)
}

// handleInfractionDetailed runs the detailed listing: filters, sorting,
// pagination, and limited framing/specimen joins.
func (s *Server) handleInfractionDetailed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	from, err := queryDate(r, "start_date")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	to, err := queryDate(r, "end_date")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if to != nil {
		end := endOfDay(*to)
		to = &end
	}

	sortBy := r.URL.Query().Get("sort_by")
	order := r.URL.Query().Get("order")
	if verr := validation.ValidateStruct(detailedRequest{SortBy: sortBy, Order: order}); verr != nil {
		rw.ValidationError("invalid query parameters", verr.Fields())
		return
	}
	if sortBy == "" {
		sortBy = "dat_hora_auto_infracao"
	}
	page, size := s.parsePage(r)

	total, items, err := s.infractions.Detailed(r.Context(), database.DetailedQuery{
		From:         from,
		To:           to,
		Municipality: r.URL.Query().Get("municipio"),
		SortBy:       sortBy,
		Descending:   order != "asc",
		Page:         page,
		Size:         size,
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.Page[models.DetailedInfraction]{Total: total, Page: page, Size: size, Items: items})
}

// handleBiomeStats aggregates infraction totals and mean fine value for a
// single biome, joined with the catalog's latest update.
func (s *Server) handleBiomeStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	biome := r.URL.Query().Get("bioma")
	if biome == "" {
		rw.BadRequest("missing required query parameter \"bioma\"")
		return
	}
	from, err := queryDate(r, "start_date")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	to, err := queryDate(r, "end_date")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if to != nil {
		end := endOfDay(*to)
		to = &end
	}

	sortBy := r.URL.Query().Get("sort_by")
	order := r.URL.Query().Get("order")
	if verr := validation.ValidateStruct(biomeStatsRequest{SortBy: sortBy, Order: order}); verr != nil {
		rw.ValidationError("invalid query parameters", verr.Fields())
		return
	}
	if sortBy == "" {
		sortBy = "total_infracoes"
	}
	page, size := s.parsePage(r)

	items, err := s.infractions.BiomeStats(r.Context(), database.BiomeStatsQuery{
		Biome:      biome,
		From:       from,
		To:         to,
		SortBy:     sortBy,
		Descending: order != "asc",
		Page:       page,
		Size:       size,
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(items)
}
