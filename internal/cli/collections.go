package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"placeplanner/internal/client"
)

func newCollectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection"},
		Short:   "Manage named collections",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			collections, err := c.ListCollections(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Output == outputJSON {
				return writeJSON(cmd, map[string]any{"collections": collections})
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPLACES")
			for _, col := range collections {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", col.ID, col.Name, col.PlaceCount)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			col, err := c.CreateCollection(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Output == outputJSON {
				return writeJSON(cmd, map[string]any{"collection": col})
			}
			fmt.Fprintln(cmd.OutOrStdout(), col.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a collection and the places saved in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			err = c.DeleteCollection(cmd.Context(), args[0])
			if errors.Is(err, client.ErrNotFound) {
				return writeErr(cmd, errNotFound("collection", args[0]))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}
