package member

import (
	"time"

	"go-expense/internal/features/permission"
)

// GroupMember is one membership record. UserID is nil for members created
// from an email invitation that has not been linked to an account yet.
// A linked user belongs to at most one group; the gateways enforce that
// with a unique index on user_id.
type GroupMember struct {
	ID          string          `json:"id" bson:"_id"`
	GroupID     string          `json:"group_id" bson:"group_id"`
	UserID      *string         `json:"user_id,omitempty" bson:"user_id,omitempty"`
	DisplayName string          `json:"display_name" bson:"display_name"`
	Email       string          `json:"email" bson:"email"`
	Role        permission.Role `json:"role" bson:"role"`
	JoinedAt    time.Time       `json:"joined_at" bson:"joined_at"`
}

// ChangeRoleRequest is the PATCH body for a member role change.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}
