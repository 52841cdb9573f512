// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dferraz/fiscalis/internal/models"
)

// SnapshotEntry is the projection of one stored offender that
// reconciliation needs: its identity, its current history, and its id.
type SnapshotEntry struct {
	ID           primitive.ObjectID
	Name         string
	Municipality string
	State        string
	History      []string
}

// Snapshot is a point-in-time view of the stored offenders, indexed by
// identity key. It is read once per run before any write; offenders
// created by a concurrent run after the snapshot are not visible to it.
type Snapshot struct {
	byKey map[IdentityKey]SnapshotEntry
}

// NewSnapshot indexes the given entries by identity key.
func NewSnapshot(entries []SnapshotEntry) *Snapshot {
	byKey := make(map[IdentityKey]SnapshotEntry, len(entries))
	for _, e := range entries {
		byKey[IdentityKey{Name: e.Name, Municipality: e.Municipality, State: e.State}] = e
	}
	return &Snapshot{byKey: byKey}
}

// Len returns the number of indexed offenders.
func (s *Snapshot) Len() int {
	return len(s.byKey)
}

// Lookup returns the stored offender for the key, if any.
func (s *Snapshot) Lookup(key IdentityKey) (SnapshotEntry, bool) {
	e, ok := s.byKey[key]
	return e, ok
}

// Patch is a merge-update against one stored offender: the history entries
// it does not yet have, plus the run's candidate act interval. The store
// re-reads the record at apply time to decide whether either timestamp
// actually widens the stored interval.
type Patch struct {
	ID         primitive.ObjectID
	Key        IdentityKey
	NewHistory []string
	StartAt    time.Time
	EndAt      time.Time
}

// Plan is the outcome of reconciling a run's groups against a snapshot:
// the offenders to insert, the patches to apply, and the groups that
// require no write at all.
type Plan struct {
	Inserts []models.Offender
	Updates []Patch
	NoOps   int
}

// Reconcile classifies each group as new, merge-update, or no-op. A group
// absent from the snapshot becomes an insert. A group whose key exists
// becomes a patch only if it carries history entries the stored record
// lacks; otherwise it is a no-op here, though the store may still widen
// timestamps when applying other patches.
func Reconcile(groups []*Group, snap *Snapshot) Plan {
	var plan Plan
	for _, group := range groups {
		existing, ok := snap.Lookup(group.Key)
		if !ok {
			plan.Inserts = append(plan.Inserts, models.Offender{
				Name:                group.Key.Name,
				Area:                group.Area,
				Municipality:        group.Key.Municipality,
				State:               group.Key.State,
				LocationDescription: group.Location,
				History:             group.History,
				StartAt:             group.StartAt,
				EndAt:               group.EndAt,
			})
			continue
		}

		newHistory := diffHistory(group.History, existing.History)
		if len(newHistory) == 0 {
			plan.NoOps++
			continue
		}
		plan.Updates = append(plan.Updates, Patch{
			ID:         existing.ID,
			Key:        group.Key,
			NewHistory: newHistory,
			StartAt:    group.StartAt,
			EndAt:      group.EndAt,
		})
	}
	return plan
}

// diffHistory returns the candidate descriptions absent from the stored
// history, preserving candidate order.
func diffHistory(candidate, stored []string) []string {
	have := make(map[string]struct{}, len(stored))
	for _, h := range stored {
		have[h] = struct{}{}
	}
	var out []string
	for _, c := range candidate {
		if _, ok := have[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
