package perm

import (
	"errors"
	"testing"

	"reportdesk/internal/model"
)

func TestCan_AdminMayDoEverything(t *testing.T) {
	admin := model.User{ID: "1", Role: model.RoleAdmin}
	for _, a := range []Action{ActionEdit, ActionDelete, ActionReorder, ActionUseAI} {
		if !Can(admin, a) {
			t.Fatalf("expected admin to be allowed %q", a)
		}
	}
	if !CanEdit(admin) || !CanUseAI(admin) || !CanReorder(admin) {
		t.Fatalf("expected admin helpers to allow")
	}
}

func TestCan_ViewerIsReadOnly(t *testing.T) {
	viewer := model.User{ID: "2", Role: model.RoleViewer}
	for _, a := range []Action{ActionEdit, ActionDelete, ActionReorder, ActionUseAI} {
		if Can(viewer, a) {
			t.Fatalf("expected viewer to be denied %q", a)
		}
	}

	err := Require(viewer, ActionUseAI)
	var d Denied
	if !errors.As(err, &d) || d.Action != ActionUseAI || d.Role != model.RoleViewer {
		t.Fatalf("expected Denied; got %v", err)
	}
	if err := Require(model.User{Role: model.RoleAdmin}, ActionDelete); err != nil {
		t.Fatalf("expected nil for admin; got %v", err)
	}
}

func TestCan_UnknownRoleDenied(t *testing.T) {
	if Can(model.User{ID: "x"}, ActionEdit) {
		t.Fatalf("expected empty role to be denied")
	}
}
