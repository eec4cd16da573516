package invitelink

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-expense/internal/common/apperror"
)

// MemoryInviteLinkRepository is the in-memory gateway used by tests and the
// dev seeder. The mutex makes Redeem's check-and-increment as atomic as the
// conditional updates in the real backends, which is what the concurrency
// tests exercise.
type MemoryInviteLinkRepository struct {
	mu      sync.Mutex
	records map[string]*InviteLink
}

func NewMemoryInviteLinkRepository() *MemoryInviteLinkRepository {
	return &MemoryInviteLinkRepository{records: make(map[string]*InviteLink)}
}

func (r *MemoryInviteLinkRepository) Insert(ctx context.Context, l *InviteLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *l
	r.records[l.ID] = &clone
	return nil
}

func (r *MemoryInviteLinkRepository) FindByID(ctx context.Context, id string) (*InviteLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	clone := *l
	return &clone, nil
}

func (r *MemoryInviteLinkRepository) FindByToken(ctx context.Context, token string) (*InviteLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.records {
		if l.Token == token {
			clone := *l
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MemoryInviteLinkRepository) FindActiveByGroup(ctx context.Context, groupID string) ([]InviteLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	links := []InviteLink{}
	for _, l := range r.records {
		if l.GroupID == groupID && l.IsActive {
			links = append(links, *l)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.Before(links[j].CreatedAt)
	})
	return links, nil
}

func (r *MemoryInviteLinkRepository) Redeem(ctx context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.records[id]
	if !ok || !l.IsActive || !l.ExpiresAt.After(now) || l.Exhausted() {
		return false, nil
	}
	l.Uses++
	return true, nil
}

func (r *MemoryInviteLinkRepository) Release(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.records[id]; ok && l.Uses > 0 {
		l.Uses--
	}
	return nil
}

func (r *MemoryInviteLinkRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.records[id]
	if !ok {
		return apperror.NotFound("invite link not found")
	}
	l.IsActive = false
	return nil
}

// DeleteByGroup removes every link of a group. Part of the group deletion
// cascade.
func (r *MemoryInviteLinkRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, l := range r.records {
		if l.GroupID == groupID {
			delete(r.records, id)
		}
	}
	return nil
}
