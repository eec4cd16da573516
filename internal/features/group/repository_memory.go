package group

import (
	"context"
	"sync"

	"go-expense/internal/common/apperror"
)

// CascadeTarget is implemented by the in-memory repositories holding
// group-scoped records, so the memory gateway can run the same deletion
// cascade the real backends do.
type CascadeTarget interface {
	DeleteByGroup(ctx context.Context, groupID string) error
}

// MemoryGroupRepository is the in-memory gateway used by tests and the dev
// seeder. Constructed explicitly and injected, never package state.
type MemoryGroupRepository struct {
	mu      sync.Mutex
	records map[string]*Group
	cascade []CascadeTarget
}

func NewMemoryGroupRepository(cascade ...CascadeTarget) *MemoryGroupRepository {
	return &MemoryGroupRepository{
		records: make(map[string]*Group),
		cascade: cascade,
	}
}

func (r *MemoryGroupRepository) Insert(ctx context.Context, g *Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *g
	r.records[g.ID] = &clone
	return nil
}

func (r *MemoryGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	clone := *g
	return &clone, nil
}

func (r *MemoryGroupRepository) UpdateFields(ctx context.Context, id string, name, description *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.records[id]
	if !ok {
		return apperror.NotFound("group not found")
	}
	if name != nil {
		g.Name = *name
	}
	if description != nil {
		g.Description = *description
	}
	return nil
}

func (r *MemoryGroupRepository) DeleteCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return apperror.NotFound("group not found")
	}
	delete(r.records, id)
	r.mu.Unlock()

	for _, target := range r.cascade {
		if err := target.DeleteByGroup(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
