// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offender is the persisted "infrator" entity: one logical offender
// accumulating environmental-infraction history across ingestion runs.
//
// Invariants maintained by the ingestion pipeline:
//   - History contains no duplicate entries.
//   - StartAt is the minimum start timestamp over all rows ever merged in.
//   - EndAt is the maximum end timestamp over all rows ever merged in.
//   - (Name, Municipality, State) is unique at the application level;
//     the collection carries no unique index.
type Offender struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                string             `bson:"nome_infrator" json:"nome_infrator"`
	Area                string             `bson:"infracao_area" json:"infracao_area"`
	Municipality        string             `bson:"municipio" json:"municipio"`
	State               string             `bson:"estado" json:"estado"`
	LocationDescription string             `bson:"des_local_infracao" json:"des_local_infracao"`
	History             []string           `bson:"historico_infracoes" json:"historico_infracoes"`
	StartAt             time.Time          `bson:"dt_inicio_ato_inequivoco" json:"dt_inicio_ato_inequivoco"`
	EndAt               time.Time          `bson:"dt_fim_ato_inequivoco" json:"dt_fim_ato_inequivoco"`
}

// OffenderStats aggregates offender counts by state and by infraction area.
type OffenderStats struct {
	Total   int64        `json:"total_infratores"`
	ByState []StateCount `json:"infratores_por_estado"`
	ByArea  []AreaCount  `json:"infratores_por_area"`
}

// StateCount is one bucket of a count-by-state aggregation.
type StateCount struct {
	State string `bson:"_id" json:"estado"`
	Count int64  `bson:"count" json:"count"`
}

// AreaCount is one bucket of a count-by-infraction-area aggregation.
type AreaCount struct {
	Area  string `bson:"_id" json:"area"`
	Count int64  `bson:"count" json:"count"`
}
