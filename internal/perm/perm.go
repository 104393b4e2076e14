package perm

import (
	"fmt"

	"reportdesk/internal/model"
)

// Action names a role-gated operation.
type Action string

const (
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionReorder Action = "reorder"
	ActionUseAI   Action = "use AI"
)

// Denied is returned when the current user's role does not allow an action.
type Denied struct {
	Role   model.Role
	Action Action
}

func (e Denied) Error() string {
	return fmt.Sprintf("permission denied: role %q cannot %s", e.Role, e.Action)
}

// Can reports whether u may perform a.
//
// Rules:
// - Admins can do everything.
// - Viewers are read-only: they can browse, search, and open reports in view mode.
func Can(u model.User, a Action) bool {
	switch u.Role {
	case model.RoleAdmin:
		return true
	default:
		return false
	}
}

func CanEdit(u model.User) bool    { return Can(u, ActionEdit) }
func CanUseAI(u model.User) bool   { return Can(u, ActionUseAI) }
func CanReorder(u model.User) bool { return Can(u, ActionReorder) }

// Require returns Denied when u may not perform a.
func Require(u model.User, a Action) error {
	if Can(u, a) {
		return nil
	}
	return Denied{Role: u.Role, Action: a}
}
