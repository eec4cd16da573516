package invitation

import "context"

// InvitationRepository is the persistence gateway for invitations.
//
// Insert returns a Conflict error when a PENDING invitation already exists
// for the same (group, email); the check-and-insert is atomic in every
// backend so concurrent creates cannot produce two PENDING invitations.
// UpdateStatus is a conditional transition: it reports false without writing
// when the stored status no longer equals from, which is what makes
// accept/decline race-safe.
type InvitationRepository interface {
	Insert(ctx context.Context, inv *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindPendingByGroup(ctx context.Context, groupID string) ([]Invitation, error)
	UpdateStatus(ctx context.Context, id string, from, to InvitationStatus) (bool, error)
}
