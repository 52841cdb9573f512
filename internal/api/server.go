// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package api

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dferraz/fiscalis/internal/config"
	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/models"
)

// OffenderIngestor runs offender CSV ingestions.
type OffenderIngestor interface {
	Run(ctx context.Context, r io.Reader, filename string) (*ingest.Summary, error)
}

// OffenderStore is the offender query surface the handlers use.
type OffenderStore interface {
	List(ctx context.Context, filter database.OffenderFilter, page, size int) (int64, []models.Offender, error)
	Count(ctx context.Context, filter database.OffenderFilter) (int64, error)
	Stats(ctx context.Context) (*models.OffenderStats, error)
	CountByState(ctx context.Context) ([]models.StateCount, error)
}

// InfractionStore is the infraction-notice query surface.
type InfractionStore interface {
	Insert(ctx context.Context, docs []models.Infraction) (int, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, page, size int) (int64, []models.Infraction, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Infraction, error)
	ByDate(ctx context.Context, day time.Time) ([]models.Infraction, error)
	Nearest(ctx context.Context, longitude, latitude, radiusMeters float64) (*models.Infraction, error)
	WithFramings(ctx context.Context, sequence int64) (*models.InfractionWithFramings, error)
	WithFramingsMany(ctx context.Context, sequences []int64) ([]models.InfractionWithFramings, error)
	SpecimensByBiome(ctx context.Context, from, to time.Time, biome string, skip, limit int) ([]models.InfractionWithSpecimens, error)
	Detailed(ctx context.Context, q database.DetailedQuery) (int64, []models.DetailedInfraction, error)
	BiomeStats(ctx context.Context, q database.BiomeStatsQuery) ([]models.BiomeStats, error)
	HealthEffectCounts(ctx context.Context) ([]models.HealthEffectCount, error)
}

// BiomeStore is the biome-catalog query surface.
type BiomeStore interface {
	Insert(ctx context.Context, docs []models.Biome) (int, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, page, size int) (int64, []models.Biome, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Biome, error)
}

// SpecimenStore is the seized-specimen query surface.
type SpecimenStore interface {
	Insert(ctx context.Context, docs []models.Specimen) (int, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, page, size int) (int64, []models.Specimen, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Specimen, error)
}

// FramingStore is the legal-framing query surface.
type FramingStore interface {
	Insert(ctx context.Context, docs []models.Framing) (int, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, page, size int) (int64, []models.Framing, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Framing, error)
	ByNormAndAdministrative(ctx context.Context, normType, administrative string, page, size int) ([]models.Framing, error)
	ByNormNumber(ctx context.Context, normNumber int64, page, size int) ([]models.Framing, error)
	NormTypeStats(ctx context.Context) ([]models.NormTypeCount, error)
}

// BuildingStore is the IBAMA building query surface.
type BuildingStore interface {
	Insert(ctx context.Context, docs []models.Building) (int, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, page, size int) (int64, []models.Building, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Building, error)
	Nearest(ctx context.Context, longitude, latitude float64, maxDistanceMeters int) (*models.Building, error)
	MunicipalityStats(ctx context.Context) ([]models.MunicipalityCount, error)
}

// Pinger reports storage liveness for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handler dependencies. Stores are interfaces so tests
// can substitute in-memory fakes.
type Server struct {
	cfg *config.Config

	ingestor    OffenderIngestor
	offenders   OffenderStore
	infractions InfractionStore
	biomes      BiomeStore
	specimens   SpecimenStore
	framings    FramingStore
	buildings   BuildingStore
	pinger      Pinger
}

// NewServer wires the handlers over the concrete repositories.
func NewServer(cfg *config.Config, db *database.DB) *Server {
	offenders := db.Offenders()
	return &Server{
		cfg:         cfg,
		ingestor:    ingest.NewPipeline(offenders, cfg.Ingest.MaxErrorMessages),
		offenders:   offenders,
		infractions: db.Infractions(),
		biomes:      db.Biomes(),
		specimens:   db.Specimens(),
		framings:    db.Framings(),
		buildings:   db.Buildings(),
		pinger:      db,
	}
}
