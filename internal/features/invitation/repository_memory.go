package invitation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go-expense/internal/common/apperror"
)

// MemoryInvitationRepository is the in-memory gateway used by tests and the
// dev seeder. One mutex serializes everything, so the duplicate-PENDING
// check and the conditional status transition behave as they do in the real
// backends.
type MemoryInvitationRepository struct {
	mu      sync.Mutex
	records map[string]*Invitation
}

func NewMemoryInvitationRepository() *MemoryInvitationRepository {
	return &MemoryInvitationRepository{records: make(map[string]*Invitation)}
}

func (r *MemoryInvitationRepository) Insert(ctx context.Context, inv *Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.GroupID == inv.GroupID &&
			strings.EqualFold(existing.Email, inv.Email) &&
			existing.Status == StatusPending {
			return apperror.Conflict("a pending invitation already exists for this email")
		}
	}
	clone := *inv
	r.records[inv.ID] = &clone
	return nil
}

func (r *MemoryInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inv := range r.records {
		if inv.Token == token {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MemoryInvitationRepository) FindPendingByGroup(ctx context.Context, groupID string) ([]Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invitations := []Invitation{}
	for _, inv := range r.records {
		if inv.GroupID == groupID && inv.Status == StatusPending {
			invitations = append(invitations, *inv)
		}
	}
	sort.Slice(invitations, func(i, j int) bool {
		return invitations[i].CreatedAt.Before(invitations[j].CreatedAt)
	})
	return invitations, nil
}

func (r *MemoryInvitationRepository) UpdateStatus(ctx context.Context, id string, from, to InvitationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.records[id]
	if !ok || inv.Status != from {
		return false, nil
	}
	inv.Status = to
	return true, nil
}

// DeleteByGroup removes every invitation of a group. Part of the group
// deletion cascade.
func (r *MemoryInvitationRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, inv := range r.records {
		if inv.GroupID == groupID {
			delete(r.records, id)
		}
	}
	return nil
}
