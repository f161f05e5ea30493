package models

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// PlaceStatus tracks whether a saved place is still on the wish list.
type PlaceStatus string

const (
	StatusWant    PlaceStatus = "want"
	StatusVisited PlaceStatus = "visited"
)

// Valid reports whether s is a known status. The empty status is not valid.
func (s PlaceStatus) Valid() bool {
	return s == StatusWant || s == StatusVisited
}

// OrDefault treats a missing or unknown status as want.
func (s PlaceStatus) OrDefault() PlaceStatus {
	if !s.Valid() {
		return StatusWant
	}
	return s
}

// Toggle flips want and visited.
func (s PlaceStatus) Toggle() PlaceStatus {
	if s.OrDefault() == StatusWant {
		return StatusVisited
	}
	return StatusWant
}

// Meta holds free-form user data attached to a saved place.
type Meta struct {
	Notes       string  `json:"notes"`
	PlannedDate *string `json:"plannedDate"` // YYYY-MM-DD or null
}

// HasPlannedDate reports whether a non-empty planned date is set.
func (m Meta) HasPlannedDate() bool {
	return m.PlannedDate != nil && *m.PlannedDate != ""
}

// Merge applies a shallow patch and returns the result. m is not modified.
func (m Meta) Merge(p MetaPatch) Meta {
	out := Meta{Notes: m.Notes, PlannedDate: cloneString(m.PlannedDate)}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.PlannedDateSet {
		out.PlannedDate = cloneString(p.PlannedDate)
	}
	return out
}

// UserPlace is a user's saved reference to a catalog place.
type UserPlace struct {
	Place
	Status     PlaceStatus `json:"status"`
	IsFavorite bool        `json:"isFavorite"`
	Meta       Meta        `json:"meta"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// NewUserPlace copies the catalog fields of p and applies the add-time defaults.
func NewUserPlace(p Place, now time.Time) UserPlace {
	return UserPlace{
		Place:     p.Clone(),
		Status:    StatusWant,
		CreatedAt: now.UTC(),
	}
}

// Normalized fills in defaults for records read from older data.
func (u UserPlace) Normalized() UserPlace {
	out := u.Clone()
	out.Status = out.Status.OrDefault()
	return out
}

// Clone returns a deep copy.
func (u UserPlace) Clone() UserPlace {
	out := u
	out.Place = u.Place.Clone()
	out.Meta.PlannedDate = cloneString(u.Meta.PlannedDate)
	return out
}

// MetaPatch is a partial Meta update. PlannedDateSet distinguishes an
// explicit null (clear the date) from an absent field (leave it alone).
type MetaPatch struct {
	Notes          *string
	PlannedDate    *string
	PlannedDateSet bool
}

func (p MetaPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2)
	if p.Notes != nil {
		out["notes"] = *p.Notes
	}
	if p.PlannedDateSet {
		out["plannedDate"] = p.PlannedDate
	}
	return json.Marshal(out)
}

func (p *MetaPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = MetaPatch{}
	if v, ok := raw["notes"]; ok && !isNull(v) {
		var notes string
		if err := json.Unmarshal(v, &notes); err != nil {
			return err
		}
		p.Notes = &notes
	}
	if v, ok := raw["plannedDate"]; ok {
		p.PlannedDateSet = true
		if !isNull(v) {
			var date string
			if err := json.Unmarshal(v, &date); err != nil {
				return err
			}
			if date != "" {
				p.PlannedDate = &date
			}
		}
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p MetaPatch) Empty() bool {
	return p.Notes == nil && !p.PlannedDateSet
}

// UserPlacePatch carries explicit new values for a saved place.
type UserPlacePatch struct {
	Status     *PlaceStatus `json:"status,omitempty" validate:"omitempty,oneof=want visited"`
	IsFavorite *bool        `json:"isFavorite,omitempty"`
	Meta       *MetaPatch   `json:"meta,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPlacePatch) Empty() bool {
	return p.Status == nil && p.IsFavorite == nil && (p.Meta == nil || p.Meta.Empty())
}

// Apply writes the patch into u.
func (p UserPlacePatch) Apply(u *UserPlace) {
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.IsFavorite != nil {
		u.IsFavorite = *p.IsFavorite
	}
	if p.Meta != nil {
		u.Meta = u.Meta.Merge(*p.Meta)
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
