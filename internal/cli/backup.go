package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"reportdesk/internal/store"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the persisted state as a JSON backup",
		Long:  "Writes to stdout unless --out is given. The document can be loaded again with 'import'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, app, func(s *session) error {
				snap := s.st.Snapshot()
				if strings.TrimSpace(out) == "" || out == "-" {
					return store.Export(cmd.OutOrStdout(), snap)
				}
				path, err := filepath.Abs(out)
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := store.Export(f, snap); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"path":       path,
						"reports":    len(snap.Reports),
						"activities": len(snap.Activities),
					},
				})
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file ('-' or empty for stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all state with a JSON backup ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errUsage("import replaces every report and activity; pass --yes to confirm"))
			}
			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				r = f
			}
			snap, err := store.Import(r)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withState(cmd, app, func(s *session) error {
				s.st.Replace(snap)
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"reports":     len(snap.Reports),
						"activities":  len(snap.Activities),
						"currentUser": snap.CurrentUser.ID,
					},
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm replacing state")
	return cmd
}
