package permission

// matrix is the static permission table. Every action the system exposes has
// an explicit entry; an action missing from the table is denied for all
// roles. There is no per-group customization, roles carry fixed grants.
var matrix = map[Action][]Role{
	ActionViewMembers:    {RoleOwner, RoleAdmin, RoleMember, RoleViewer},
	ActionInviteMembers:  {RoleOwner, RoleAdmin},
	ActionChangeRoles:    {RoleOwner, RoleAdmin},
	ActionRevokeMembers:  {RoleOwner, RoleAdmin},
	ActionResetPasswords: {RoleOwner},
	ActionEditGroup:      {RoleOwner, RoleAdmin},
	ActionDeleteGroup:    {RoleOwner},
	ActionViewExpenses:   {RoleOwner, RoleAdmin, RoleMember, RoleViewer},
	ActionAddExpenses:    {RoleOwner, RoleAdmin, RoleMember},
	ActionEditExpenses:   {RoleOwner, RoleAdmin, RoleMember},
	ActionDeleteExpenses: {RoleOwner, RoleAdmin},
}

// Allowed reports whether role may perform action. Unknown actions and
// unknown roles deny.
func Allowed(role Role, action Action) bool {
	for _, r := range matrix[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Actions returns every action the matrix covers. Used to assert the table
// stays total as actions are added.
func Actions() []Action {
	out := make([]Action, 0, len(matrix))
	for a := range matrix {
		out = append(out, a)
	}
	return out
}

// AllActions is the authoritative list of actions the system exposes.
// The matrix must cover each one.
var AllActions = []Action{
	ActionViewMembers,
	ActionInviteMembers,
	ActionChangeRoles,
	ActionRevokeMembers,
	ActionResetPasswords,
	ActionEditGroup,
	ActionDeleteGroup,
	ActionViewExpenses,
	ActionAddExpenses,
	ActionEditExpenses,
	ActionDeleteExpenses,
}
