package cli

import (
	"reportdesk/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage with the default user and sample reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.diskStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			_, found, err := s.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if !found {
				if err := s.Save(cmd.Context(), store.Defaults()); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":     s.Dir,
					"backend": string(s.Backend),
					"key":     store.Key,
					"created": !found,
				},
			})
		},
	}
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all persisted state (next start uses the defaults)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errUsage("reset deletes every report and activity; pass --yes to confirm"))
			}
			s, err := app.diskStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Reset(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"dir": s.Dir, "reset": true},
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
