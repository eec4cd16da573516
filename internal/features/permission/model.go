package permission

import "go-expense/internal/common/apperror"

// Role is the closed set of group roles, totally ordered by privilege.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

var roleLevels = map[Role]int{
	RoleOwner:  4,
	RoleAdmin:  3,
	RoleMember: 2,
	RoleViewer: 1,
}

// Level returns the privilege tier of the role; higher outranks lower.
// Unknown roles rank below every valid role.
func (r Role) Level() int {
	return roleLevels[r]
}

// Outranks reports whether r sits strictly above other in the hierarchy.
func (r Role) Outranks(other Role) bool {
	return r.Level() > other.Level()
}

// Valid reports whether r is one of the four defined roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Grantable reports whether r may be handed out through an invitation,
// invite link, or role change. OWNER is never grantable.
func (r Role) Grantable() bool {
	return r.Valid() && r != RoleOwner
}

// ParseRole validates a role string at the boundary. Anything outside the
// closed set is rejected, never stored as-is.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", apperror.InvalidRole("unknown role %q", s)
	}
	return r, nil
}

// ParseGrantableRole is ParseRole plus the OWNER exclusion, applied on every
// path that assigns a role to someone.
func ParseGrantableRole(s string) (Role, error) {
	r, err := ParseRole(s)
	if err != nil {
		return "", err
	}
	if !r.Grantable() {
		return "", apperror.InvalidRole("role %s cannot be granted", r)
	}
	return r, nil
}

// Action names an operation the permission matrix gates.
type Action string

const (
	ActionViewMembers    Action = "view_members"
	ActionInviteMembers  Action = "invite_members"
	ActionChangeRoles    Action = "change_roles"
	ActionRevokeMembers  Action = "revoke_members"
	ActionResetPasswords Action = "reset_passwords"
	ActionEditGroup      Action = "edit_group"
	ActionDeleteGroup    Action = "delete_group"
	ActionViewExpenses   Action = "view_expenses"
	ActionAddExpenses    Action = "add_expenses"
	ActionEditExpenses   Action = "edit_expenses"
	ActionDeleteExpenses Action = "delete_expenses"
)
