package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"placeplanner/internal/prefs"
	"placeplanner/internal/projection"
	"placeplanner/internal/validation"
)

// viewFlags are the filter and sort flags shared by list and export. Flags
// left unset fall back to the preferences saved for the scope.
type viewFlags struct {
	status    []string
	favorites bool
	dateMode  string
	date      string
	search    string
	sortKey   string
	direction string
	save      bool
}

func (v *viewFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&v.status, "status", nil, "Only these statuses (want,visited)")
	fs.BoolVar(&v.favorites, "favorites", false, "Only favorites")
	fs.StringVar(&v.dateMode, "date-mode", "", "Planned date filter (any|with-date|without-date|before|after)")
	fs.StringVar(&v.date, "date", "", "Bound for --date-mode before/after (YYYY-MM-DD)")
	fs.StringVar(&v.search, "search", "", "Case-insensitive search over title and notes")
	fs.StringVar(&v.sortKey, "sort", "", "Sort key (title|status|plannedDate|createdAt)")
	fs.StringVar(&v.direction, "direction", "", "Sort direction (asc|desc)")
	fs.BoolVar(&v.save, "save", false, "Remember this filter and sort for the collection")
}

// resolve merges the changed flags over the saved preferences and, with
// --save, stores the result.
func (v *viewFlags) resolve(cmd *cobra.Command, app *App) (prefs.Preferences, error) {
	store, err := app.openPrefs()
	if err != nil {
		return prefs.Preferences{}, err
	}
	defer store.Close()

	ctx := cmd.Context()
	p, err := store.Load(ctx, app.scope())
	if err != nil {
		return prefs.Preferences{}, err
	}

	fs := cmd.Flags()
	if fs.Changed("status") {
		statuses, err := projection.ParseStatuses(v.status)
		if err != nil {
			return prefs.Preferences{}, err
		}
		p.Filter.Status = statuses
	}
	if fs.Changed("favorites") {
		p.Filter.FavoritesOnly = v.favorites
	}
	if fs.Changed("date-mode") {
		mode, err := projection.ParseDateMode(v.dateMode)
		if err != nil {
			return prefs.Preferences{}, err
		}
		p.Filter.PlannedDate.Mode = mode
	}
	if fs.Changed("date") {
		if err := validation.Date("date", &v.date); err != nil {
			return prefs.Preferences{}, err
		}
		p.Filter.PlannedDate.Value = v.date
	}
	if fs.Changed("search") {
		p.Filter.Search = v.search
	}
	if fs.Changed("sort") {
		key, err := projection.ParseSortKey(v.sortKey)
		if err != nil {
			return prefs.Preferences{}, err
		}
		p.Sort.Key = key
	}
	if fs.Changed("direction") {
		dir, err := projection.ParseDirection(v.direction)
		if err != nil {
			return prefs.Preferences{}, err
		}
		p.Sort.Direction = dir
	}

	if v.save {
		if err := store.Save(ctx, app.scope(), p); err != nil {
			return prefs.Preferences{}, err
		}
	}
	return p, nil
}
