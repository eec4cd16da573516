package member

import (
	"context"
	"sort"
	"sync"

	"go-expense/internal/common/apperror"
	"go-expense/internal/features/permission"
)

// MemoryMemberRepository is the in-memory gateway used by tests and the dev
// seeder. It is constructed per process or per test, never shared package
// state, and serializes all access under one mutex so the same conflict
// semantics hold as in the real backends.
type MemoryMemberRepository struct {
	mu      sync.Mutex
	records map[string]*GroupMember
}

func NewMemoryMemberRepository() *MemoryMemberRepository {
	return &MemoryMemberRepository{records: make(map[string]*GroupMember)}
}

func (r *MemoryMemberRepository) Insert(ctx context.Context, m *GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.UserID != nil {
		for _, existing := range r.records {
			if existing.UserID != nil && *existing.UserID == *m.UserID {
				return apperror.Conflict("user already belongs to a group")
			}
		}
	}
	clone := *m
	r.records[m.ID] = &clone
	return nil
}

func (r *MemoryMemberRepository) FindByID(ctx context.Context, groupID, memberID string) (*GroupMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.records[memberID]
	if !ok || m.GroupID != groupID {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (r *MemoryMemberRepository) FindByUser(ctx context.Context, userID string) (*GroupMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.records {
		if m.UserID != nil && *m.UserID == userID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MemoryMemberRepository) FindByGroup(ctx context.Context, groupID string) ([]GroupMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := []GroupMember{}
	for _, m := range r.records {
		if m.GroupID == groupID {
			members = append(members, *m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

func (r *MemoryMemberRepository) UpdateRole(ctx context.Context, groupID, memberID string, role permission.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.records[memberID]
	if !ok || m.GroupID != groupID {
		return apperror.NotFound("member not found")
	}
	m.Role = role
	return nil
}

func (r *MemoryMemberRepository) Delete(ctx context.Context, groupID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.records[memberID]
	if !ok || m.GroupID != groupID {
		return apperror.NotFound("member not found")
	}
	delete(r.records, memberID)
	return nil
}

func (r *MemoryMemberRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, m := range r.records {
		if m.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

// DeleteByGroup removes every member of a group. Part of the group deletion
// cascade.
func (r *MemoryMemberRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.records {
		if m.GroupID == groupID {
			delete(r.records, id)
		}
	}
	return nil
}
