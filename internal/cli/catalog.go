package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

func newCatalogCmd(app *App) *cobra.Command {
	var (
		category string
		search   string
		near     string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the place catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			q := models.CatalogQuery{Category: category, Search: search}
			if near != "" {
				coords, err := parseNear(near)
				if err != nil {
					return writeErr(cmd, err)
				}
				q.Near = &coords
			}

			entries, err := c.ListPlaces(cmd.Context(), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Output == outputJSON {
				return writeJSON(cmd, map[string]any{"places": entries})
			}
			return printCatalog(cmd, entries)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only places in this category")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive title search")
	cmd.Flags().StringVar(&near, "near", "", "Order by distance from lat,lon")

	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			categories, err := c.Categories(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Output == outputJSON {
				return writeJSON(cmd, map[string]any{"categories": categories})
			}
			for _, cat := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), cat)
			}
			return nil
		},
	})

	return cmd
}

func parseNear(s string) (models.Coordinates, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return models.Coordinates{}, fmt.Errorf("invalid --near %q (want lat,lon)", s)
	}
	var (
		coords models.Coordinates
		err    error
	)
	if coords.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid latitude %q", lat)
	}
	if coords.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid longitude %q", lon)
	}
	if err := validation.Struct(coords); err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid --near %q: %w", s, err)
	}
	return coords, nil
}

func printCatalog(cmd *cobra.Command, entries []models.CatalogEntry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tCATEGORY\tDISTANCE")
	for _, e := range entries {
		distance := ""
		if e.DistanceKm != nil {
			distance = fmt.Sprintf("%.0f km", *e.DistanceKm)
			if e.IsNearest {
				distance += " (nearest)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, e.City, e.Category, distance)
	}
	return tw.Flush()
}
