package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or reset the saved filter and sort of a collection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved view preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openPrefs()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			p, err := store.Load(cmd.Context(), app.scope())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeJSON(cmd, p)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the saved view preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openPrefs()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			if err := store.Reset(cmd.Context(), app.scope()); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset preferences for %s\n", app.scope().Key())
			return nil
		},
	})

	return cmd
}
