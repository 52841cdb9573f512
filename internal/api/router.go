// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dferraz/fiscalis/internal/middleware"
)

// Router builds the HTTP routing tree. Route paths mirror the upstream
// IBAMA API so existing clients keep working.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.API.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(s.cfg.API.RateLimitReqs, s.cfg.API.RateLimitWindow))

	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/infrator", func(r chi.Router) {
		r.Post("/upload-csv", s.handleOffenderUpload)
		r.Get("/", s.handleOffenderList)
		r.Get("/infratores/count", s.handleOffenderCount)
		r.Get("/stats", s.handleOffenderStats)
		r.Get("/infrator_report", s.handleOffenderReport)
	})

	r.Route("/auto_infracao", func(r chi.Router) {
		r.Post("/upload", s.handleInfractionUpload)
		r.Get("/auto_infracoes", s.handleInfractionList)
		r.Get("/count_auto_infracao", s.handleInfractionCount)
		r.Get("/get_by_date", s.handleInfractionByDate)
		r.Get("/nearby", s.handleInfractionNearby)
		r.Get("/auto_infracao_report", s.handleInfractionReport)
		r.Get("/auto_infracaoget_by_id/{id}", s.handleInfractionByID)
	})

	r.Route("/biomas", func(r chi.Router) {
		r.Post("/upload/biomas", s.handleBiomeUpload)
		r.Get("/biomas", s.handleBiomeList)
		r.Get("/biomas/stats/contagem", s.handleBiomeCount)
		r.Get("/biomas/{id}", s.handleBiomeByID)
	})

	r.Route("/especime", func(r chi.Router) {
		r.Post("/upload", s.handleSpecimenUpload)
		r.Get("/especimes", s.handleSpecimenList)
		r.Get("/count_especime", s.handleSpecimenCount)
		r.Get("/especime/{id}", s.handleSpecimenByID)
	})

	r.Route("/enquadramento", func(r chi.Router) {
		r.Post("/upload", s.handleFramingUpload)
		r.Get("/enquadramentos", s.handleFramingList)
		r.Get("/count_enquadramento", s.handleFramingCount)
		r.Get("/stats/enquadramento/tipo_norma", s.handleFramingNormTypeStats)
		r.Get("/enquadramento/norma_and_adm", s.handleFramingByNormAndAdm)
		r.Get("/enquadramento/nu_norma", s.handleFramingByNormNumber)
		r.Get("/enquadramento/{id}", s.handleFramingByID)
	})

	r.Route("/edf", func(r chi.Router) {
		r.Post("/upload", s.handleBuildingUpload)
		r.Get("/edificios", s.handleBuildingList)
		r.Get("/count_edificio", s.handleBuildingCount)
		r.Get("/nearby", s.handleBuildingNearby)
		r.Get("/stats/edificios/municipio", s.handleBuildingMunicipalityStats)
		r.Get("/edificio/{id}", s.handleBuildingByID)
	})

	r.Route("/complex", func(r chi.Router) {
		r.Get("/auto_infracao/detailed", s.handleInfractionDetailed)
		r.Get("/infractions-by-biome", s.handleBiomeStats)
	})

	r.Get("/auto-infracao-enquadramento/{sequence}", s.handleInfractionWithFramings)
	r.Get("/auto-infracao-enquadramento-multiplos", s.handleInfractionWithFramingsMany)
	r.Get("/auto-infracao/biomas/especimes", s.handleSpecimensByBiome)

	return r
}
