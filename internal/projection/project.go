// Package projection turns a collection of saved places into the filtered,
// ordered view that gets rendered. Everything here is pure: inputs are never
// modified and equal inputs give equal outputs.
package projection

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"placeplanner/shared/go/models"
)

// Project filters places and stably sorts the survivors.
func Project(places []models.UserPlace, filter FilterState, sort SortState) []models.UserPlace {
	return Sort(Filter(places, filter), sort)
}

// Filter returns copies of the entries that satisfy every predicate in f,
// in input order.
func Filter(places []models.UserPlace, f FilterState) []models.UserPlace {
	keep := matcher(f)
	out := make([]models.UserPlace, 0, len(places))
	for _, p := range places {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func matcher(f FilterState) func(models.UserPlace) bool {
	search := strings.ToLower(f.Search)
	return func(p models.UserPlace) bool {
		if len(f.Status) > 0 && !slices.Contains(f.Status, p.Status.OrDefault()) {
			return false
		}
		if f.FavoritesOnly && !p.IsFavorite {
			return false
		}
		if !matchDate(p.Meta, f.PlannedDate) {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Meta.Notes), search) {
			return false
		}
		return true
	}
}

// matchDate compares ISO dates lexicographically; undated entries never
// satisfy before or after.
func matchDate(m models.Meta, d DateFilter) bool {
	switch d.Mode {
	case DateWith:
		return m.HasPlannedDate()
	case DateWithout:
		return !m.HasPlannedDate()
	case DateBefore:
		if d.Value == "" {
			return true
		}
		return m.HasPlannedDate() && *m.PlannedDate < d.Value
	case DateAfter:
		if d.Value == "" {
			return true
		}
		return m.HasPlannedDate() && *m.PlannedDate > d.Value
	default:
		return true
	}
}

// Sort returns a stably sorted copy of places.
func Sort(places []models.UserPlace, s SortState) []models.UserPlace {
	out := make([]models.UserPlace, len(places))
	for i, p := range places {
		out[i] = p.Clone()
	}
	slices.SortStableFunc(out, comparator(s))
	return out
}

func comparator(s SortState) func(a, b models.UserPlace) int {
	sign := 1
	if s.Direction == Desc {
		sign = -1
	}

	switch s.Key {
	case SortStatus:
		return func(a, b models.UserPlace) int {
			return sign * cmp.Compare(statusRank(a.Status), statusRank(b.Status))
		}
	case SortPlannedDate:
		return func(a, b models.UserPlace) int {
			aDated, bDated := a.Meta.HasPlannedDate(), b.Meta.HasPlannedDate()
			switch {
			case aDated && bDated:
				return sign * strings.Compare(*a.Meta.PlannedDate, *b.Meta.PlannedDate)
			case aDated:
				return -1
			case bDated:
				return 1
			default:
				return 0
			}
		}
	case SortCreatedAt:
		return func(a, b models.UserPlace) int {
			return sign * cmp.Compare(createdMillis(a), createdMillis(b))
		}
	default:
		// collate.Collator is not safe for concurrent use.
		c := collate.New(language.Und)
		return func(a, b models.UserPlace) int {
			return sign * c.CompareString(a.Title, b.Title)
		}
	}
}

func statusRank(s models.PlaceStatus) int {
	if s.OrDefault() == models.StatusVisited {
		return 1
	}
	return 0
}

func createdMillis(p models.UserPlace) int64 {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return p.CreatedAt.UnixMilli()
}
