package group

import "context"

// GroupRepository is the persistence gateway for group records.
//
// DeleteCascade removes the group together with all of its members,
// invitations, and invite links. Backends either run it in one transaction
// or order the deletes so a retry after a partial failure completes the
// cascade.
type GroupRepository interface {
	Insert(ctx context.Context, g *Group) error
	FindByID(ctx context.Context, id string) (*Group, error)
	UpdateFields(ctx context.Context, id string, name, description *string) error
	DeleteCascade(ctx context.Context, id string) error
}
