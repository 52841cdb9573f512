// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGrouperAdd(t *testing.T) {
	t.Run("rejects blank name", func(t *testing.T) {
		g := NewGrouper()
		err := g.Add(Row{Line: 7, Name: "", Municipality: "X", State: "SP"})
		var missing *ErrMissingIdentity
		if !errors.As(err, &missing) {
			t.Fatalf("expected ErrMissingIdentity, got %v", err)
		}
		if missing.Line != 7 {
			t.Errorf("expected line 7 in error, got %d", missing.Line)
		}
		if g.Len() != 0 {
			t.Errorf("expected no groups, got %d", g.Len())
		}
	})

	t.Run("blank municipality and state are valid key parts", func(t *testing.T) {
		g := NewGrouper()
		if err := g.Add(Row{Line: 1, Name: "A", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Len() != 1 {
			t.Fatalf("expected 1 group, got %d", g.Len())
		}
		key := g.Groups()[0].Key
		if key != (IdentityKey{Name: "A"}) {
			t.Errorf("unexpected key: %+v", key)
		}
	})

	t.Run("same identity merges into one group", func(t *testing.T) {
		g := NewGrouper()
		rows := []Row{
			{Line: 1, Name: "A", Municipality: "X", State: "SP", Description: "caça", StartAt: date("2020-02-01"), EndAt: date("2020-02-10")},
			{Line: 2, Name: "A", Municipality: "X", State: "SP", Description: "pesca", StartAt: date("2020-01-01"), EndAt: date("2020-03-01")},
		}
		for _, row := range rows {
			if err := g.Add(row); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if g.Len() != 1 {
			t.Fatalf("expected 1 group, got %d", g.Len())
		}
		group := g.Groups()[0]
		if !group.StartAt.Equal(date("2020-01-01")) {
			t.Errorf("expected widened start 2020-01-01, got %v", group.StartAt)
		}
		if !group.EndAt.Equal(date("2020-03-01")) {
			t.Errorf("expected widened end 2020-03-01, got %v", group.EndAt)
		}
		if len(group.History) != 2 || group.History[0] != "caça" || group.History[1] != "pesca" {
			t.Errorf("unexpected history: %v", group.History)
		}
	})

	t.Run("different municipality yields distinct group", func(t *testing.T) {
		g := NewGrouper()
		_ = g.Add(Row{Line: 1, Name: "A", Municipality: "X", State: "SP", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		_ = g.Add(Row{Line: 2, Name: "A", Municipality: "Y", State: "SP", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		if g.Len() != 2 {
			t.Fatalf("expected 2 groups, got %d", g.Len())
		}
	})

	t.Run("duplicate descriptions are not repeated", func(t *testing.T) {
		g := NewGrouper()
		for i := 0; i < 3; i++ {
			_ = g.Add(Row{Line: i + 1, Name: "A", Description: "desmatamento", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		}
		group := g.Groups()[0]
		if len(group.History) != 1 {
			t.Errorf("expected deduplicated history, got %v", group.History)
		}
		if group.Rows != 3 {
			t.Errorf("expected 3 merged rows, got %d", group.Rows)
		}
	})

	t.Run("blank description leaves history empty", func(t *testing.T) {
		g := NewGrouper()
		_ = g.Add(Row{Line: 1, Name: "A", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		group := g.Groups()[0]
		if group.History == nil || len(group.History) != 0 {
			t.Errorf("expected empty non-nil history, got %#v", group.History)
		}
	})

	t.Run("first row wins descriptive fields", func(t *testing.T) {
		g := NewGrouper()
		_ = g.Add(Row{Line: 1, Name: "A", Area: "", Location: "margem do rio", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		_ = g.Add(Row{Line: 2, Name: "A", Area: "fauna", Location: "outro local", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		group := g.Groups()[0]
		if group.Area != "" || group.Location != "margem do rio" {
			t.Errorf("expected first row's fields kept, got area=%q location=%q", group.Area, group.Location)
		}
	})

	t.Run("equal timestamps keep first-merged value", func(t *testing.T) {
		g := NewGrouper()
		start := date("2020-01-01")
		end := date("2020-01-05")
		_ = g.Add(Row{Line: 1, Name: "A", StartAt: start, EndAt: end})
		_ = g.Add(Row{Line: 2, Name: "A", StartAt: start, EndAt: end})
		group := g.Groups()[0]
		if !group.StartAt.Equal(start) || !group.EndAt.Equal(end) {
			t.Errorf("timestamps changed on equal merge: %v / %v", group.StartAt, group.EndAt)
		}
	})

	t.Run("groups preserve first-seen order", func(t *testing.T) {
		g := NewGrouper()
		names := []string{"C", "A", "B"}
		for i, name := range names {
			_ = g.Add(Row{Line: i + 1, Name: name, StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
		}
		groups := g.Groups()
		for i, name := range names {
			if groups[i].Key.Name != name {
				t.Fatalf("expected group %d to be %q, got %q", i, name, groups[i].Key.Name)
			}
		}
	})
}

func TestIdentityKeyNoSeparatorCollision(t *testing.T) {
	// Two rows whose joined fields would collide under naive string
	// concatenation must stay distinct groups.
	g := NewGrouper()
	_ = g.Add(Row{Line: 1, Name: "A_B", Municipality: "C", State: "SP", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
	_ = g.Add(Row{Line: 2, Name: "A", Municipality: "B_C", State: "SP", StartAt: date("2020-01-01"), EndAt: date("2020-01-02")})
	if g.Len() != 2 {
		t.Fatalf("identity keys collided: %d group(s)", g.Len())
	}
}
