package session

import (
	"testing"
	"time"

	"placeplanner/shared/go/models"
)

var addedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func ids(places []models.UserPlace) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReduceAddPrependsWithDefaults(t *testing.T) {
	s := Reduce(State{}, Sync{Places: []models.UserPlace{{Place: models.Place{ID: "paris", Title: "Paris"}}}})
	s = Reduce(s, Add{Place: models.Place{ID: "rome", Title: "Rome"}, Now: addedAt})

	if got := ids(s.Places); !equalIDs(got, []string{"rome", "paris"}) {
		t.Fatalf("expected rome first, got %v", got)
	}
	rome := s.Places[0]
	if rome.Status != models.StatusWant || rome.IsFavorite || rome.Meta.Notes != "" || rome.Meta.PlannedDate != nil {
		t.Fatalf("unexpected defaults %+v", rome)
	}
	if !rome.CreatedAt.Equal(addedAt) {
		t.Fatalf("expected createdAt %v, got %v", addedAt, rome.CreatedAt)
	}
}

func TestReduceAddDuplicateIsNoOp(t *testing.T) {
	s := Reduce(State{}, Add{Place: models.Place{ID: "rome", Title: "Rome"}, Now: addedAt})
	s = Reduce(s, ToggleFavorite{ID: "rome"})
	s = Reduce(s, Add{Place: models.Place{ID: "rome", Title: "Rome again"}, Now: addedAt.Add(time.Hour)})

	if len(s.Places) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(s.Places))
	}
	if !s.Places[0].IsFavorite || s.Places[0].Title != "Rome" {
		t.Fatalf("duplicate add must not overwrite, got %+v", s.Places[0])
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	date := "2026-06-01"
	before := Reduce(State{}, Sync{Places: []models.UserPlace{
		{Place: models.Place{ID: "rome"}, Status: models.StatusWant, Meta: models.Meta{Notes: "a", PlannedDate: &date}},
		{Place: models.Place{ID: "paris"}, Status: models.StatusVisited},
	}})

	after := Reduce(before, ToggleStatus{ID: "rome"})
	after = Reduce(after, ToggleFavorite{ID: "rome"})
	after = Reduce(after, UpdateMeta{ID: "rome", Patch: models.MetaPatch{PlannedDateSet: true}})
	after = Reduce(after, Remove{ID: "paris"})

	if before.Places[0].Status != models.StatusWant || before.Places[0].IsFavorite {
		t.Fatalf("previous snapshot changed: %+v", before.Places[0])
	}
	if before.Places[0].Meta.PlannedDate == nil || len(before.Places) != 2 {
		t.Fatalf("previous snapshot changed: %+v", before.Places)
	}
	if got := after.Places[0]; got.Status != models.StatusVisited || !got.IsFavorite || got.Meta.PlannedDate != nil || got.Meta.Notes != "a" {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(after.Places) != 1 {
		t.Fatalf("expected paris removed, got %v", ids(after.Places))
	}
}

func TestReduceUnknownIDIsNoOp(t *testing.T) {
	s := Reduce(State{}, Sync{Places: []models.UserPlace{{Place: models.Place{ID: "rome"}}}})

	for _, a := range []Action{
		Remove{ID: "nowhere"},
		ToggleStatus{ID: "nowhere"},
		ToggleFavorite{ID: "nowhere"},
		UpdateMeta{ID: "nowhere"},
	} {
		if got := Reduce(s, a); !equalIDs(ids(got.Places), []string{"rome"}) || got.Places[0].IsFavorite {
			t.Fatalf("%T changed state: %+v", a, got)
		}
	}
}

func TestReduceLifecycle(t *testing.T) {
	s := Reduce(State{}, Load{})
	if !s.Loading {
		t.Fatalf("Load should enter loading")
	}

	s = Reduce(s, Sync{Places: []models.UserPlace{{Place: models.Place{ID: "rome"}}}})
	if s.Loading || s.Places[0].Status != models.StatusWant {
		t.Fatalf("Sync should settle and normalize, got %+v", s)
	}

	s = Reduce(s, Reset{})
	if s.Loading || len(s.Places) != 0 || s.Places == nil {
		t.Fatalf("Reset should leave an empty loaded state, got %+v", s)
	}
}
