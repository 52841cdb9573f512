// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Biome is one row of the biome catalog extract, linking an infraction
// notice number to the biome it affected.
type Biome struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sequence  int64              `bson:"seq_auto_infracao" json:"seq_auto_infracao"`
	Number    int64              `bson:"num_auto_infracao" json:"num_auto_infracao"`
	Series    string             `bson:"cd_serie_auto_infracao" json:"cd_serie_auto_infracao"`
	Biome     string             `bson:"bioma" json:"bioma"`
	UpdatedAt time.Time          `bson:"ultima_atualizacao" json:"ultima_atualizacao"`
}

// Specimen is one seized-specimen row attributed to an infraction notice.
type Specimen struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sequence         int64              `bson:"seq_auto_infracao" json:"seq_auto_infracao"`
	Number           int64              `bson:"num_auto_infracao" json:"num_auto_infracao"`
	SpecimenSequence int64              `bson:"seq_especime" json:"seq_especime"`
	Quantity         int64              `bson:"quantidade" json:"quantidade"`
	MeasureUnit      string             `bson:"unidade_medida" json:"unidade_medida"`
	Characteristic   string             `bson:"caracteristica" json:"caracteristica"`
	Type             string             `bson:"tipo" json:"tipo"`
	ScientificName   string             `bson:"nome_cientifico" json:"nome_cientifico"`
	PopularName      string             `bson:"nome_popular" json:"nome_popular"`
}

// Framing is one legal-framing row ("enquadramento"): the norm under which
// an infraction notice was issued.
type Framing struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sequence        int64              `bson:"seq_auto_infracao" json:"seq_auto_infracao"`
	Number          string             `bson:"num_auto_infracao" json:"num_auto_infracao"`
	FramingSequence int64              `bson:"sq_enquadramento" json:"sq_enquadramento"`
	Administrative  string             `bson:"administrativo" json:"administrativo"`
	NormType        string             `bson:"tp_norma" json:"tp_norma"`
	NormNumber      int64              `bson:"nu_norma" json:"nu_norma"`
	UpdatedAt       time.Time          `bson:"ultima_atualizacao" json:"ultima_atualizacao"`
}
