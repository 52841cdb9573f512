// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"fmt"
	"time"
)

// ErrMissingIdentity marks a row rejected for a blank offender name.
type ErrMissingIdentity struct {
	Line int
}

func (e *ErrMissingIdentity) Error() string {
	return fmt.Sprintf("line %d: offender name is blank or missing", e.Line)
}

// Group accumulates the rows of one identity key into a single candidate
// offender record.
type Group struct {
	Key IdentityKey

	// Area and Location are taken from the first row merged into the
	// group. Equal-ranked candidates from later rows never replace them;
	// the ordering is stable because rows are merged in file order.
	Area     string
	Location string

	// History holds the distinct non-blank infraction descriptions in
	// first-seen order.
	History []string

	// StartAt and EndAt cover the union of the group's act intervals:
	// the minimum start and maximum end across all merged rows.
	StartAt time.Time
	EndAt   time.Time

	// FirstLine is the data row that opened the group.
	FirstLine int
	Rows      int

	seen map[string]struct{}
}

// Grouper folds normalized rows into groups keyed by offender identity,
// preserving first-seen group order.
type Grouper struct {
	groups map[IdentityKey]*Group
	order  []IdentityKey
}

// NewGrouper returns an empty grouper.
func NewGrouper() *Grouper {
	return &Grouper{groups: make(map[IdentityKey]*Group)}
}

// Add merges one row into its group. Municipality and state may be blank;
// a blank name is rejected with ErrMissingIdentity.
func (g *Grouper) Add(row Row) error {
	if row.Name == "" {
		return &ErrMissingIdentity{Line: row.Line}
	}

	key := IdentityKey{Name: row.Name, Municipality: row.Municipality, State: row.State}
	group, ok := g.groups[key]
	if !ok {
		group = &Group{
			Key:       key,
			Area:      row.Area,
			Location:  row.Location,
			History:   []string{},
			StartAt:   row.StartAt,
			EndAt:     row.EndAt,
			FirstLine: row.Line,
			seen:      make(map[string]struct{}),
		}
		g.groups[key] = group
		g.order = append(g.order, key)
	} else {
		// Strictly wider timestamps replace; equal values keep the
		// earlier-merged row's value.
		if row.StartAt.Before(group.StartAt) {
			group.StartAt = row.StartAt
		}
		if row.EndAt.After(group.EndAt) {
			group.EndAt = row.EndAt
		}
	}

	group.Rows++
	if row.Description != "" {
		if _, dup := group.seen[row.Description]; !dup {
			group.seen[row.Description] = struct{}{}
			group.History = append(group.History, row.Description)
		}
	}
	return nil
}

// Len returns the number of distinct groups.
func (g *Grouper) Len() int {
	return len(g.order)
}

// Groups returns the groups in first-seen order.
func (g *Grouper) Groups() []*Group {
	out := make([]*Group, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.groups[key])
	}
	return out
}
