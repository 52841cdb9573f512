// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package models

// Page is a paginated listing response.
type Page[T any] struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Items []T   `json:"items"`
}

// Count is a bare count response.
type Count struct {
	Count int64 `json:"count"`
}

// UploadSummary reports the outcome of a simple (insert-only) CSV upload.
type UploadSummary struct {
	Message       string   `json:"message"`
	TotalRows     int      `json:"total_processados"`
	TotalInserted int      `json:"total_inseridos"`
	TotalErrors   int      `json:"total_erros"`
	ErrorDetails  []string `json:"detalhes_erros,omitempty"`
}
