package cli

import (
	"strings"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/model"
	"reportdesk/internal/perm"

	"github.com/spf13/cobra"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Current user commands",
	}
	cmd.AddCommand(newUserShowCmd(app))
	cmd.AddCommand(newUserSetCmd(app))
	cmd.AddCommand(newUserSetRoleCmd(app))
	return cmd
}

func newUserSetRoleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "set-role <admin|viewer>",
		Short:     "Switch the current user's role",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.RoleAdmin), string(model.RoleViewer)},
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := model.ParseRole(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withState(cmd, app, func(s *session) error {
				u := s.st.CurrentUser()
				u.Role = role
				s.st.SetCurrentUser(u)
				return writeOut(cmd, app, map[string]any{"data": u})
			})
		},
	}
	return cmd
}

func newUserShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current user with profile stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, app, func(s *session) error {
				u := s.st.CurrentUser()
				return writeOut(cmd, app, map[string]any{
					"data": dashboard.Profile(s.st),
					"meta": map[string]any{
						"canEdit":    perm.CanEdit(u),
						"canUseAI":   perm.CanUseAI(u),
						"canReorder": perm.CanReorder(u),
					},
				})
			})
		},
	}
	return cmd
}

func newUserSetCmd(app *App) *cobra.Command {
	var name, email, role string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the current user's name, email, or role",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("email") && !flags.Changed("role") {
				return writeErr(cmd, errUsage("nothing to update: pass at least one of --name, --email, --role"))
			}
			var r model.Role
			if flags.Changed("role") {
				v, err := model.ParseRole(role)
				if err != nil {
					return writeErr(cmd, err)
				}
				r = v
			}
			return withState(cmd, app, func(s *session) error {
				u := s.st.CurrentUser()
				if flags.Changed("name") {
					if strings.TrimSpace(name) == "" {
						return errUsage("--name must not be empty")
					}
					u.Name = name
				}
				if flags.Changed("email") {
					u.Email = strings.TrimSpace(email)
				}
				if r != "" {
					u.Role = r
				}
				s.st.SetCurrentUser(u)
				return writeOut(cmd, app, map[string]any{"data": u})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&role, "role", "", "Role (admin|viewer)")
	return cmd
}
