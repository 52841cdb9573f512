// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// GeoPoint is a GeoJSON Point as stored in the 2dsphere-indexed location
// field. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON Point from a longitude/latitude pair.
func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

// Building is one IBAMA public civil building ("edifício"). Lat and Long
// keep the raw DMS strings from the source extract; Location carries the
// decimal GeoJSON point used for geospatial lookups.
type Building struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"nome" json:"nome"`
	ShortName      string             `bson:"nomeabrev" json:"nomeabrev"`
	Municipality   string             `bson:"municipio" json:"municipio"`
	State          string             `bson:"estado" json:"estado"`
	PhysicalStatus string             `bson:"situacao_fisica" json:"situacao_fisica"`
	Lat            string             `bson:"lat" json:"lat"`
	Long           string             `bson:"long" json:"long"`
	Location       GeoPoint           `bson:"location" json:"location"`
}

// MunicipalityCount is one bucket of the buildings-per-municipality
// aggregation.
type MunicipalityCount struct {
	Municipality string `bson:"municipio" json:"municipio"`
	Total        int64  `bson:"total_edificios" json:"total_edificios"`
}

// NormTypeCount is one bucket of the framings-per-norm-type aggregation.
type NormTypeCount struct {
	NormType string `bson:"tipo_norma" json:"tipo_norma"`
	Total    int64  `bson:"total" json:"total"`
}
