package member

import (
	"context"

	"go-expense/internal/features/permission"
)

// MemberRepository is the persistence gateway for membership records.
// Membership is normalized: every member is its own record with atomic
// per-member CRUD, never an array embedded in the group document.
//
// Find methods return (nil, nil) when no record matches; only storage
// failures surface as errors. Insert returns a Conflict error when the
// member's linked user already belongs to a group.
type MemberRepository interface {
	Insert(ctx context.Context, m *GroupMember) error
	FindByID(ctx context.Context, groupID, memberID string) (*GroupMember, error)
	FindByUser(ctx context.Context, userID string) (*GroupMember, error)
	FindByGroup(ctx context.Context, groupID string) ([]GroupMember, error)
	UpdateRole(ctx context.Context, groupID, memberID string, role permission.Role) error
	Delete(ctx context.Context, groupID, memberID string) error
	CountByGroup(ctx context.Context, groupID string) (int64, error)
}
