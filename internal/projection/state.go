package projection

import (
	"fmt"
	"strings"

	"placeplanner/shared/go/models"
)

// DateMode selects how the planned-date filter treats an entry.
type DateMode string

const (
	DateAny     DateMode = "any"
	DateWith    DateMode = "with-date"
	DateWithout DateMode = "without-date"
	DateBefore  DateMode = "before"
	DateAfter   DateMode = "after"
)

// DateFilter narrows entries by their planned date. Value is a YYYY-MM-DD
// bound used by the before and after modes.
type DateFilter struct {
	Mode  DateMode `json:"mode"`
	Value string   `json:"value,omitempty"`
}

// FilterState is the set of predicates applied to a collection. All of them
// must hold for an entry to be kept.
type FilterState struct {
	Status        []models.PlaceStatus `json:"status,omitempty"`
	FavoritesOnly bool                 `json:"favoritesOnly"`
	PlannedDate   DateFilter           `json:"plannedDate"`
	Search        string               `json:"search,omitempty"`
}

// SortKey names the field a collection is ordered by.
type SortKey string

const (
	SortTitle       SortKey = "title"
	SortStatus      SortKey = "status"
	SortPlannedDate SortKey = "plannedDate"
	SortCreatedAt   SortKey = "createdAt"
)

// Direction orders a sort ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the active ordering.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultFilter keeps every entry.
func DefaultFilter() FilterState {
	return FilterState{PlannedDate: DateFilter{Mode: DateAny}}
}

// DefaultSort orders by title, ascending.
func DefaultSort() SortState {
	return SortState{Key: SortTitle, Direction: Asc}
}

// IsPassThrough reports whether f keeps every entry.
func (f FilterState) IsPassThrough() bool {
	return len(f.Status) == 0 &&
		!f.FavoritesOnly &&
		!f.PlannedDate.active() &&
		f.Search == ""
}

func (d DateFilter) active() bool {
	switch d.Mode {
	case DateWith, DateWithout:
		return true
	case DateBefore, DateAfter:
		return d.Value != ""
	default:
		return false
	}
}

// ParseDateMode accepts the wire names of the planned-date modes. The empty
// string means any.
func ParseDateMode(s string) (DateMode, error) {
	switch m := DateMode(s); m {
	case "":
		return DateAny, nil
	case DateAny, DateWith, DateWithout, DateBefore, DateAfter:
		return m, nil
	default:
		return "", fmt.Errorf("unknown planned date mode %q", s)
	}
}

// ParseSortKey accepts the wire names of the sort keys. The empty string
// means title.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortTitle, nil
	case SortTitle, SortStatus, SortPlannedDate, SortCreatedAt:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// ParseDirection accepts asc or desc. The empty string means asc.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case "":
		return Asc, nil
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

// ParseStatuses parses a list of status names, rejecting unknown ones.
func ParseStatuses(values []string) ([]models.PlaceStatus, error) {
	out := make([]models.PlaceStatus, 0, len(values))
	for _, v := range values {
		s := models.PlaceStatus(strings.TrimSpace(v))
		if s == "" {
			continue
		}
		if !s.Valid() {
			return nil, fmt.Errorf("unknown status %q", v)
		}
		out = append(out, s)
	}
	return out, nil
}
