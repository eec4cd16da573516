package permission

import "testing"

func TestMatrixIsTotal(t *testing.T) {
	for _, action := range AllActions {
		if len(matrix[action]) == 0 {
			t.Errorf("action %s has no matrix entry", action)
		}
	}

	if len(matrix) != len(AllActions) {
		t.Errorf("matrix has %d entries, expected %d", len(matrix), len(AllActions))
	}
}

func TestUnknownActionDenied(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer} {
		if Allowed(role, Action("launch_missiles")) {
			t.Errorf("unknown action allowed for %s", role)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleViewer, ActionViewMembers, true},
		{RoleViewer, ActionInviteMembers, false},
		{RoleViewer, ActionAddExpenses, false},
		{RoleMember, ActionAddExpenses, true},
		{RoleMember, ActionChangeRoles, false},
		{RoleMember, ActionDeleteGroup, false},
		{RoleAdmin, ActionInviteMembers, true},
		{RoleAdmin, ActionEditGroup, true},
		{RoleAdmin, ActionDeleteGroup, false},
		{RoleAdmin, ActionResetPasswords, false},
		{RoleOwner, ActionDeleteGroup, true},
		{RoleOwner, ActionResetPasswords, true},
	}

	for _, tt := range tests {
		if got := Allowed(tt.role, tt.action); got != tt.want {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestRoleOrdering(t *testing.T) {
	order := []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer}
	for i := 0; i < len(order)-1; i++ {
		if !order[i].Outranks(order[i+1]) {
			t.Errorf("%s should outrank %s", order[i], order[i+1])
		}
		if order[i+1].Outranks(order[i]) {
			t.Errorf("%s should not outrank %s", order[i+1], order[i])
		}
	}
	if RoleOwner.Outranks(RoleOwner) {
		t.Error("a role must not outrank itself")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"OWNER", false},
		{"ADMIN", false},
		{"MEMBER", false},
		{"VIEWER", false},
		{"owner", true},
		{"SUPERADMIN", true},
		{"", true},
	}

	for _, tt := range tests {
		_, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestParseGrantableRole(t *testing.T) {
	if _, err := ParseGrantableRole("OWNER"); err == nil {
		t.Error("OWNER must not be grantable")
	}
	for _, r := range []string{"ADMIN", "MEMBER", "VIEWER"} {
		if _, err := ParseGrantableRole(r); err != nil {
			t.Errorf("ParseGrantableRole(%q) unexpected error: %v", r, err)
		}
	}
}
