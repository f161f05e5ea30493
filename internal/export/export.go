// Package export writes saved places in portable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"placeplanner/shared/go/models"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json or csv, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or csv)", s)
	}
}

var csvHeader = []string{
	"id", "title", "city", "category", "status", "isFavorite",
	"plannedDate", "notes", "lat", "lon", "createdAt",
}

// Write encodes places to w in the given format, in the order given.
func Write(w io.Writer, format Format, places []models.UserPlace) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, places)
	case FormatCSV:
		return writeCSV(w, places)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, places []models.UserPlace) error {
	if places == nil {
		places = []models.UserPlace{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Places []models.UserPlace `json:"places"`
	}{Places: places}); err != nil {
		return fmt.Errorf("encode places: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, places []models.UserPlace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range places {
		if err := cw.Write(csvRecord(p.Normalized())); err != nil {
			return fmt.Errorf("write %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(p models.UserPlace) []string {
	created := ""
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	planned := ""
	if p.Meta.HasPlannedDate() {
		planned = *p.Meta.PlannedDate
	}
	return []string{
		p.ID,
		p.Title,
		p.City,
		p.Category,
		string(p.Status),
		strconv.FormatBool(p.IsFavorite),
		planned,
		p.Meta.Notes,
		formatCoord(p.Lat),
		formatCoord(p.Lon),
		created,
	}
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
