// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package models defines the persisted document shapes and API response
// types for the IBAMA environmental-infraction collections. Document field
// names follow the upstream IBAMA extract schema (Portuguese keys); Go
// identifiers use English names.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Infraction is one "auto de infração" record: a typed infraction notice
// with fine value, motive, public-health effect, and a point coordinate.
type Infraction struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sequence      int64              `bson:"seq_auto_infracao" json:"seq_auto_infracao"`
	Type          string             `bson:"tipo_auto" json:"tipo_auto"`
	Value         float64            `bson:"val_auto_infracao" json:"val_auto_infracao"`
	ConductMotive string             `bson:"motivacao_conduta" json:"motivacao_conduta"`
	HealthEffect  string             `bson:"efeito_saude_publica" json:"efeito_saude_publica"`
	OccurredAt    time.Time          `bson:"dat_hora_auto_infracao" json:"dat_hora_auto_infracao"`
	Municipality  string             `bson:"municipio" json:"municipio"`
	Longitude     float64            `bson:"num_longitude" json:"num_longitude"`
	Latitude      float64            `bson:"num_latitude" json:"num_latitude"`
	Biome         string             `bson:"bioma" json:"bioma"`
}

// InfractionWithFramings is the joined shape returned by the
// infraction-with-framings lookup endpoints.
type InfractionWithFramings struct {
	Sequence      int64      `json:"seq_auto_infracao"`
	Infraction    Infraction `json:"auto_infracao"`
	Framings      []Framing  `json:"enquadramentos"`
	TotalFramings int        `json:"total_enquadramentos"`
}

// InfractionWithSpecimens pairs an infraction with its seized specimens.
type InfractionWithSpecimens struct {
	Infraction Infraction `json:"auto_infracao"`
	Specimens  []Specimen `json:"especimes"`
}

// HealthEffectCount is one bucket of the infractions-per-public-health-
// effect aggregation.
type HealthEffectCount struct {
	Effect string `bson:"_id" json:"efeito_saude_publica"`
	Count  int64  `bson:"count" json:"count"`
}

// BiomeStats is one row of the per-biome infraction statistics aggregation.
type BiomeStats struct {
	Biome         string     `bson:"bioma" json:"bioma"`
	Total         int64      `bson:"total_infracoes" json:"total_infracoes"`
	MeanValue     float64    `bson:"media_valor" json:"media_valor"`
	LastUpdatedAt *time.Time `bson:"ultima_atualizacao,omitempty" json:"ultima_atualizacao,omitempty"`
}

// DetailedInfraction is one row of the detailed listing aggregation:
// the infraction core fields plus limited framing and specimen joins.
type DetailedInfraction struct {
	Sequence     int64             `bson:"seq_auto_infracao" json:"seq_auto_infracao"`
	OccurredAt   time.Time         `bson:"dat_hora_auto_infracao" json:"dat_hora_auto_infracao"`
	Municipality string            `bson:"municipio" json:"municipio"`
	Value        float64           `bson:"val_auto_infracao" json:"val_auto_infracao"`
	Framings     []FramingSummary  `bson:"enquadramentos" json:"enquadramentos"`
	Specimens    []SpecimenSummary `bson:"especies" json:"especies"`
}

// FramingSummary is the projected framing shape inside DetailedInfraction.
type FramingSummary struct {
	FramingSequence int64  `bson:"sq_enquadramento" json:"sq_enquadramento"`
	NormType        string `bson:"tp_norma" json:"tp_norma"`
	NormNumber      int64  `bson:"nu_norma" json:"nu_norma"`
}

// SpecimenSummary is the projected specimen shape inside DetailedInfraction.
type SpecimenSummary struct {
	SpecimenSequence int64  `bson:"seq_especime" json:"seq_especime"`
	Quantity         int64  `bson:"quantidade" json:"quantidade"`
	PopularName      string `bson:"nome_popular" json:"nome_popular"`
}
