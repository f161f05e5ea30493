package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"placeplanner/internal/client"
	"placeplanner/internal/session"
	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

func newListCmd(app *App) *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := view.resolve(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, _, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			places := s.View(p.Filter, p.Sort)
			if app.Output == outputJSON {
				return writeJSON(cmd, map[string]any{"places": places})
			}
			return printPlaces(cmd, places)
		},
	}
	view.register(cmd.Flags())
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var custom models.Place

	cmd := &cobra.Command{
		Use:   "add <place-id>",
		Short: "Save a catalog place (or a custom one with --title)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			s, remote, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			place := custom
			place.ID = id
			if place.Title == "" {
				place, err = remote.GetPlace(cmd.Context(), id)
				if errors.Is(err, client.ErrNotFound) {
					return writeErr(cmd, errNotFound("catalog place", id))
				}
				if err != nil {
					return writeErr(cmd, err)
				}
			} else if err := validation.Struct(place); err != nil {
				return writeErr(cmd, err)
			}

			if !s.Add(cmd.Context(), place) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s is already saved\n", id)
			}
			s.Wait()
			if err := remote.Err(); err != nil {
				return writeErr(cmd, fmt.Errorf("add %s: %w", id, err))
			}
			return printOne(cmd, app, s, id)
		},
	}

	cmd.Flags().StringVar(&custom.Title, "title", "", "Title of a custom place not in the catalog")
	cmd.Flags().StringVar(&custom.City, "city", "", "City of a custom place")
	cmd.Flags().StringVar(&custom.Category, "category", "", "Category of a custom place")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <place-id>",
		Short: "Toggle a place between want and visited",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, args[0], func(ctx context.Context, s *session.Session, id string) {
				s.ToggleStatus(ctx, id)
			})
		},
	}
}

func newFavoriteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <place-id>",
		Short: "Toggle the favorite flag of a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, args[0], func(ctx context.Context, s *session.Session, id string) {
				s.ToggleFavorite(ctx, id)
			})
		},
	}
}

func newNotesCmd(app *App) *cobra.Command {
	var (
		notes     string
		date      string
		clearDate bool
	)

	cmd := &cobra.Command{
		Use:   "notes <place-id>",
		Short: "Set the notes or planned date of a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.MetaPatch
			if cmd.Flags().Changed("notes") {
				patch.Notes = &notes
			}
			if cmd.Flags().Changed("date") {
				if clearDate {
					return writeErr(cmd, errors.New("--date and --clear-date are mutually exclusive"))
				}
				if err := validation.Date("plannedDate", &date); err != nil {
					return writeErr(cmd, err)
				}
				patch.PlannedDate = &date
				patch.PlannedDateSet = true
			}
			if clearDate {
				patch.PlannedDate = nil
				patch.PlannedDateSet = true
			}
			if patch.Empty() {
				return writeErr(cmd, errors.New("nothing to update: pass --notes, --date or --clear-date"))
			}

			return app.mutate(cmd, args[0], func(ctx context.Context, s *session.Session, id string) {
				s.UpdateMeta(ctx, id, patch)
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&date, "date", "", "Planned visit date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDate, "clear-date", false, "Remove the planned date")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <place-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved place",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, args[0], func(ctx context.Context, s *session.Session, id string) {
				s.Remove(ctx, id)
			})
		},
	}
}

// mutate applies fn to a saved place and waits for the server to confirm.
func (a *App) mutate(cmd *cobra.Command, id string, fn func(context.Context, *session.Session, string)) error {
	id = strings.TrimSpace(id)
	s, remote, err := a.openSession(cmd)
	if err != nil {
		return writeErr(cmd, err)
	}
	if !s.State().Has(id) {
		return writeErr(cmd, errNotFound("place", id))
	}

	fn(cmd.Context(), s, id)
	s.Wait()
	if err := remote.Err(); err != nil {
		return writeErr(cmd, fmt.Errorf("update %s: %w", id, err))
	}
	if !s.State().Has(id) {
		if a.Output == outputJSON {
			return writeJSON(cmd, map[string]any{"removed": id})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
		return nil
	}
	return printOne(cmd, a, s, id)
}

func printOne(cmd *cobra.Command, app *App, s *session.Session, id string) error {
	up, ok := s.State().Find(id)
	if !ok {
		return errNotFound("place", id)
	}
	if app.Output == outputJSON {
		return writeJSON(cmd, map[string]any{"place": up})
	}
	return printPlaces(cmd, []models.UserPlace{up})
}

func printPlaces(cmd *cobra.Command, places []models.UserPlace) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tFAVORITE\tPLANNED\tNOTES")
	for _, up := range places {
		fav := ""
		if up.IsFavorite {
			fav = "*"
		}
		planned := ""
		if up.Meta.PlannedDate != nil {
			planned = *up.Meta.PlannedDate
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			up.ID, up.Title, up.Status.OrDefault(), fav, planned, oneLine(up.Meta.Notes))
	}
	return tw.Flush()
}

func oneLine(s string) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return string(r)
}
