// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReconcile(t *testing.T) {
	existingID := primitive.NewObjectID()
	snap := NewSnapshot([]SnapshotEntry{
		{
			ID:           existingID,
			Name:         "A",
			Municipality: "X",
			State:        "SP",
			History:      []string{"caça"},
		},
	})

	t.Run("unknown key becomes insert", func(t *testing.T) {
		groups := []*Group{{
			Key:     IdentityKey{Name: "B", Municipality: "Y", State: "RJ"},
			History: []string{"pesca"},
			StartAt: date("2020-01-01"),
			EndAt:   date("2020-02-01"),
		}}
		plan := Reconcile(groups, snap)
		if len(plan.Inserts) != 1 || len(plan.Updates) != 0 || plan.NoOps != 0 {
			t.Fatalf("unexpected plan: %+v", plan)
		}
		ins := plan.Inserts[0]
		if ins.Name != "B" || ins.Municipality != "Y" || ins.State != "RJ" {
			t.Errorf("unexpected insert identity: %+v", ins)
		}
		if len(ins.History) != 1 || ins.History[0] != "pesca" {
			t.Errorf("unexpected insert history: %v", ins.History)
		}
	})

	t.Run("known key with new history becomes patch", func(t *testing.T) {
		groups := []*Group{{
			Key:     IdentityKey{Name: "A", Municipality: "X", State: "SP"},
			History: []string{"caça", "pesca"},
			StartAt: date("2019-01-01"),
			EndAt:   date("2021-01-01"),
		}}
		plan := Reconcile(groups, snap)
		if len(plan.Updates) != 1 {
			t.Fatalf("expected 1 update, got %+v", plan)
		}
		patch := plan.Updates[0]
		if patch.ID != existingID {
			t.Errorf("patch targets wrong id: %v", patch.ID)
		}
		if len(patch.NewHistory) != 1 || patch.NewHistory[0] != "pesca" {
			t.Errorf("expected only net-new history, got %v", patch.NewHistory)
		}
	})

	t.Run("known key with no new history is a no-op", func(t *testing.T) {
		groups := []*Group{{
			Key:     IdentityKey{Name: "A", Municipality: "X", State: "SP"},
			History: []string{"caça"},
			StartAt: date("2018-01-01"),
			EndAt:   date("2022-01-01"),
		}}
		plan := Reconcile(groups, snap)
		if len(plan.Inserts) != 0 || len(plan.Updates) != 0 || plan.NoOps != 1 {
			t.Fatalf("expected single no-op, got %+v", plan)
		}
	})

	t.Run("empty group history against existing record is a no-op", func(t *testing.T) {
		groups := []*Group{{
			Key:     IdentityKey{Name: "A", Municipality: "X", State: "SP"},
			History: []string{},
		}}
		plan := Reconcile(groups, snap)
		if plan.NoOps != 1 {
			t.Fatalf("expected no-op, got %+v", plan)
		}
	})
}

func TestDiffHistory(t *testing.T) {
	got := diffHistory([]string{"a", "b", "c"}, []string{"b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("unexpected diff: %v", got)
	}
	if diffHistory(nil, []string{"b"}) != nil {
		t.Error("expected nil diff for empty candidate")
	}
}
