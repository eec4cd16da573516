package invitelink

import (
	"context"
	"time"
)

// InviteLinkRepository is the persistence gateway for invite links.
//
// Redeem is the correctness-critical operation: it increments the use count
// only when the link is still active, unexpired, and under its use budget,
// as one atomic conditional update. It reports false without mutating when
// any guard fails, so concurrent redemptions can never push Uses past
// MaxUses. Release is Redeem's compensation: it gives a claimed use back
// when the membership insert that should have followed it failed.
// Deactivate is idempotent.
type InviteLinkRepository interface {
	Insert(ctx context.Context, l *InviteLink) error
	FindByID(ctx context.Context, id string) (*InviteLink, error)
	FindByToken(ctx context.Context, token string) (*InviteLink, error)
	FindActiveByGroup(ctx context.Context, groupID string) ([]InviteLink, error)
	Redeem(ctx context.Context, id string, now time.Time) (bool, error)
	Release(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}
