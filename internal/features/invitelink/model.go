package invitelink

import (
	"time"

	"go-expense/internal/features/permission"
)

// InviteLink is a reusable, usage-limited join token. Revocation is the only
// stored terminal state (IsActive=false); exhaustion and expiry are derived
// from Uses/MaxUses and ExpiresAt at access time.
type InviteLink struct {
	ID              string          `json:"id" bson:"_id"`
	GroupID         string          `json:"group_id" bson:"group_id"`
	CreatorMemberID string          `json:"creator_member_id" bson:"creator_member_id"`
	Token           string          `json:"token" bson:"token"`
	Role            permission.Role `json:"role" bson:"role"`
	MaxUses         *int            `json:"max_uses" bson:"max_uses"`
	Uses            int             `json:"uses" bson:"uses"`
	ExpiresAt       time.Time       `json:"expires_at" bson:"expires_at"`
	IsActive        bool            `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
}

// Exhausted reports whether the link has burned through its use budget.
// Always false for unlimited links.
func (l *InviteLink) Exhausted() bool {
	return l.MaxUses != nil && l.Uses >= *l.MaxUses
}

type GenerateLinkRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Role    string `json:"role" validate:"required"`
	MaxUses *int   `json:"max_uses" validate:"omitempty,min=1"`
}

// JoinResult is the redeem response: confirmation plus the granted role.
type JoinResult struct {
	GroupID  string          `json:"group_id"`
	MemberID string          `json:"member_id"`
	Role     permission.Role `json:"role"`
}
