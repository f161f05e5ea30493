package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"placeplanner/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		view   viewFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved places as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := view.resolve(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, _, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			places := s.View(p.Filter, p.Sort)

			if out == "" || out == "-" {
				return export.Write(cmd.OutOrStdout(), f, places)
			}
			file, err := os.Create(out)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := export.Write(file, f, places); err != nil {
				_ = file.Close()
				return writeErr(cmd, err)
			}
			if err := file.Close(); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d places to %s\n", len(places), out)
			return nil
		},
	}

	view.register(cmd.Flags())
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "Export format (json|csv)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (stdout when empty)")
	return cmd
}
