package group

import "time"

// Group is a shared expense group. MemberCount is derived from the
// membership records at read time and never stored.
type Group struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	OwnerUserID string    `json:"owner_user_id" bson:"owner_user_id"`
	MemberCount int64     `json:"member_count" bson:"-"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateGroupRequest is a patch: nil fields are left untouched.
type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}
