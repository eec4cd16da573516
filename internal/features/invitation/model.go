package invitation

import (
	"time"

	"go-expense/internal/features/permission"
)

// InvitationStatus is one-way: PENDING is the only live state, the other
// three are terminal.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "PENDING"
	StatusAccepted InvitationStatus = "ACCEPTED"
	StatusDeclined InvitationStatus = "DECLINED"
	StatusExpired  InvitationStatus = "EXPIRED"
)

// Invitation is a single-recipient email invite. Email is stored lowercased;
// at most one PENDING invitation exists per (group, email), enforced by a
// partial unique index in the gateways.
type Invitation struct {
	ID              string           `json:"id" bson:"_id"`
	GroupID         string           `json:"group_id" bson:"group_id"`
	InviterMemberID string           `json:"inviter_member_id" bson:"inviter_member_id"`
	Email           string           `json:"email" bson:"email"`
	Role            permission.Role  `json:"role" bson:"role"`
	Token           string           `json:"token" bson:"token"`
	Status          InvitationStatus `json:"status" bson:"status"`
	Message         string           `json:"message,omitempty" bson:"message,omitempty"`
	ExpiresAt       time.Time        `json:"expires_at" bson:"expires_at"`
	CreatedAt       time.Time        `json:"created_at" bson:"created_at"`
}

type CreateInvitationRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Role    string `json:"role" validate:"required"`
	Message string `json:"message" validate:"max=500"`
}

// InvitationWithGroup is the GET-by-token response shape: the invitee sees
// which group they were invited to before holding any membership.
type InvitationWithGroup struct {
	Invitation
	GroupName string `json:"group_name"`
}
