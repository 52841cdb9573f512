// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"fmt"
	"time"
)

// Timestamp layouts observed in the IBAMA extracts, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseTimestamp parses an extract timestamp, trying each known layout.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ErrInvalidDate marks a row excluded because a timestamp failed to parse.
// These rows are counted separately from other row-level failures.
type ErrInvalidDate struct {
	Line   int
	Column string
	Value  string
}

func (e *ErrInvalidDate) Error() string {
	return fmt.Sprintf("line %d: invalid %s value %q", e.Line, e.Column, e.Value)
}

// NormalizeRow extracts one offender pipeline row from the table. String
// fields are trimmed and not-available literals mapped to empty by the
// table accessor; the two act timestamps must both parse or the row is
// excluded with ErrInvalidDate.
func NormalizeRow(t *Table, i int) (Row, error) {
	row := Row{
		Line:         i + 1,
		Name:         t.Cell(i, ColOffenderName),
		Area:         t.Cell(i, ColArea),
		Municipality: t.Cell(i, ColMunicipality),
		State:        t.Cell(i, ColState),
		Location:     t.Cell(i, ColLocation),
		Description:  t.Cell(i, ColDescription),
	}

	start, err := ParseTimestamp(t.Cell(i, ColStartAt))
	if err != nil {
		return Row{}, &ErrInvalidDate{Line: row.Line, Column: ColStartAt, Value: t.Cell(i, ColStartAt)}
	}
	end, err := ParseTimestamp(t.Cell(i, ColEndAt))
	if err != nil {
		return Row{}, &ErrInvalidDate{Line: row.Line, Column: ColEndAt, Value: t.Cell(i, ColEndAt)}
	}

	row.StartAt = start
	row.EndAt = end
	return row, nil
}
