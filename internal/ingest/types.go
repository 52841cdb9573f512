// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package ingest implements the CSV ingestion pipelines for the IBAMA
// extracts, including the offender merge pipeline: row normalization,
// in-memory grouping by identity key, reconciliation against a
// point-in-time snapshot of stored offenders, and batch persistence.
package ingest

import (
	"fmt"
	"time"
)

// Source column names of the infraction extract consumed by the offender
// pipeline. The extract is semicolon-delimited with all fields as text.
const (
	ColOffenderName = "NOME_INFRATOR"
	ColArea         = "INFRACAO_AREA"
	ColMunicipality = "MUNICIPIO"
	ColState        = "UF"
	ColLocation     = "DES_LOCAL_INFRACAO"
	ColDescription  = "DES_INFRACAO"
	ColStartAt      = "DT_INICIO_ATO_INEQUIVOCO"
	ColEndAt        = "DT_FIM_ATO_INEQUIVOCO"
)

// RequiredColumns must be present in the uploaded file for an offender
// ingestion run to start.
var RequiredColumns = []string{ColOffenderName, ColStartAt, ColEndAt}

// Row is one normalized row of the infraction extract. All string fields
// are trimmed; absent or not-available source values are empty strings.
type Row struct {
	// Line is the 1-based data row number in the uploaded file,
	// used in row-level error messages.
	Line int

	Name         string
	Area         string
	Municipality string
	State        string
	Location     string
	Description  string
	StartAt      time.Time
	EndAt        time.Time
}

// IdentityKey identifies one logical offender. Two rows with the same key
// are merged into the same offender record. A composite value type is used
// rather than a joined string so separator characters inside field values
// cannot collide.
type IdentityKey struct {
	Name         string
	Municipality string
	State        string
}

// String renders the key for log output.
func (k IdentityKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Name, k.Municipality, k.State)
}

// Summary reports the outcome of one offender ingestion run.
type Summary struct {
	Message string `json:"message"`

	// TotalRows is the number of data rows read from the file.
	TotalRows int `json:"total_rows"`

	// ValidRows is the number of rows that survived normalization.
	ValidRows int `json:"valid_rows"`

	// InvalidDateRows counts rows excluded because a start or end
	// timestamp failed to parse.
	InvalidDateRows int `json:"invalid_date_rows"`

	// MissingIdentityRows counts rows excluded for a blank offender name.
	MissingIdentityRows int `json:"missing_identity_rows"`

	// Groups is the number of distinct identity keys found in the file.
	Groups int `json:"groups"`

	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`

	// ErrorCount is the total number of row-level and persistence errors.
	ErrorCount int `json:"error_count"`

	// Errors carries at most the first maxErrorMessages error messages.
	Errors []string `json:"errors"`
}

// FileError is a whole-file rejection: the upload is refused before any
// grouping or persistence is attempted.
type FileError struct {
	Reason string
}

func (e *FileError) Error() string {
	return e.Reason
}

// NewFileError builds a FileError with a formatted reason.
func NewFileError(format string, args ...interface{}) *FileError {
	return &FileError{Reason: fmt.Sprintf(format, args...)}
}
