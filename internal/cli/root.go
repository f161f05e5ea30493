// Package cli implements the placectl command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"placeplanner/internal/client"
	"placeplanner/internal/prefs"
	"placeplanner/internal/session"
	"placeplanner/shared/go/logging"
	"placeplanner/shared/go/models"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type App struct {
	Server     string
	User       string
	Collection string
	StateDir   string
	Output     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "placectl",
		Short:        "Track places you want to visit",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse the catalog near Zurich
  placectl catalog --near 47.37,8.54

  # Save a place and mark it visited
  placectl add rome
  placectl status rome

  # Favorites planned before summer, newest first
  placectl list --favorites --date-mode before --date 2026-06-01 --sort createdAt --direction desc
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Output != outputTable && app.Output != outputJSON {
				return fmt.Errorf("unknown output %q (want table or json)", app.Output)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("PLACECTL_SERVER", "http://localhost:3000"), "Base URL of the placeplanner server")
	cmd.PersistentFlags().StringVar(&app.User, "user", envOr("PLACECTL_USER", ""), "User id sent as the bearer token")
	cmd.PersistentFlags().StringVar(&app.Collection, "collection", envOr("PLACECTL_COLLECTION", ""), "Collection id (default collection when empty)")
	cmd.PersistentFlags().StringVar(&app.StateDir, "state-dir", envOr("PLACECTL_STATE_DIR", defaultStateDir()), "Directory holding saved view preferences")
	cmd.PersistentFlags().StringVarP(&app.Output, "output", "o", outputTable, "Output format (table|json)")

	cmd.AddCommand(newCatalogCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newFavoriteCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newCollectionsCmd(app))
	cmd.AddCommand(newPrefsCmd(app))

	return cmd
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".placectl"
	}
	return filepath.Join(dir, "placectl")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (a *App) scope() models.Scope {
	return models.Scope{UserID: a.User, Collection: a.Collection}
}

func (a *App) client() (*client.Client, error) {
	if strings.TrimSpace(a.User) == "" {
		return nil, errors.New("no user: pass --user or set PLACECTL_USER")
	}
	return client.New(a.Server, a.User), nil
}

func (a *App) openPrefs() (*prefs.BadgerStore, error) {
	return prefs.Open(a.StateDir)
}

// openSession loads the collection of the current scope into a session
// backed by the server. Failed writes are kept on the returned remote so
// commands can report them after Wait; its client serves any other call.
func (a *App) openSession(cmd *cobra.Command) (*session.Session, *recordingRemote, error) {
	c, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	remote := &recordingRemote{Client: c}
	logger := logging.New(logging.Config{
		Level:  "warn",
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	s := session.New(remote, a.scope(), session.WithLogger(logger.Component("session")))
	if err := s.Load(cmd.Context()); err != nil {
		return nil, nil, fmt.Errorf("load places: %w", err)
	}
	return s, remote, nil
}

// recordingRemote remembers the first failed write so the command can exit
// non-zero after the session has rolled back.
type recordingRemote struct {
	*client.Client

	mu  sync.Mutex
	err error
}

var _ session.Remote = (*recordingRemote)(nil)

func (r *recordingRemote) record(err error) error {
	if err != nil {
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
	}
	return err
}

func (r *recordingRemote) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *recordingRemote) CreateUserPlace(ctx context.Context, scope models.Scope, place models.Place) (models.UserPlace, error) {
	up, err := r.Client.CreateUserPlace(ctx, scope, place)
	return up, r.record(err)
}

func (r *recordingRemote) PatchUserPlace(ctx context.Context, scope models.Scope, id string, patch models.UserPlacePatch) (models.UserPlace, error) {
	up, err := r.Client.PatchUserPlace(ctx, scope, id, patch)
	return up, r.record(err)
}

func (r *recordingRemote) DeleteUserPlace(ctx context.Context, scope models.Scope, id string) error {
	return r.record(r.Client.DeleteUserPlace(ctx, scope, id))
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
