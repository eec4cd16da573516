package group

import (
	"context"
	"time"

	"go-expense/internal/common/apperror"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/common/validation"
	"go-expense/internal/features/member"
	"go-expense/internal/features/permission"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GroupService is the lifecycle entry point for groups: creation with the
// automatic OWNER membership, rename/describe, and owner-only cascading
// deletion. A user belongs to at most one group, enforced here at creation
// and by the gateways' unique index on user_id.
type GroupService interface {
	CreateGroup(ctx context.Context, req CreateGroupRequest, creator common_models.Identity) (*Group, error)
	GetCurrentGroup(ctx context.Context, identity common_models.Identity) (*Group, error)
	GetGroup(ctx context.Context, id string, requester common_models.Identity) (*Group, error)
	UpdateGroup(ctx context.Context, id string, patch UpdateGroupRequest, requester common_models.Identity) (*Group, error)
	DeleteGroup(ctx context.Context, id string, requester common_models.Identity) error
}

type GroupServiceImpl struct {
	repo     GroupRepository
	members  member.MemberRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewGroupService(repo GroupRepository, members member.MemberRepository, validate *validator.Validate, logger *zap.Logger) GroupService {
	return &GroupServiceImpl{
		repo:     repo,
		members:  members,
		validate: validate,
		logger:   logger,
	}
}

func (s *GroupServiceImpl) CreateGroup(ctx context.Context, req CreateGroupRequest, creator common_models.Identity) (*Group, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	existing, err := s.members.FindByUser(ctx, creator.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("user already belongs to a group")
	}

	now := time.Now()
	g := &Group{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerUserID: creator.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, g); err != nil {
		return nil, err
	}

	userID := creator.UserID
	owner := &member.GroupMember{
		ID:          uuid.NewString(),
		GroupID:     g.ID,
		UserID:      &userID,
		DisplayName: creator.DisplayName,
		Email:       creator.Email,
		Role:        permission.RoleOwner,
		JoinedAt:    now,
	}
	if err := s.members.Insert(ctx, owner); err != nil {
		// Lost the race against another group creation by the same user;
		// take the empty group back out.
		_ = s.repo.DeleteCascade(ctx, g.ID)
		return nil, err
	}

	s.logger.Info("group created",
		zap.String("group_id", g.ID),
		zap.String("owner_user_id", creator.UserID))

	g.MemberCount = 1
	return g, nil
}

// GetCurrentGroup returns the caller's group, creating a default one when
// the caller does not belong to any group yet.
func (s *GroupServiceImpl) GetCurrentGroup(ctx context.Context, identity common_models.Identity) (*Group, error) {
	m, err := s.members.FindByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return s.CreateGroup(ctx, CreateGroupRequest{Name: defaultGroupName(identity.DisplayName)}, identity)
	}

	g, err := s.repo.FindByID(ctx, m.GroupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperror.NotFound("group not found")
	}
	return s.withMemberCount(ctx, g)
}

func (s *GroupServiceImpl) GetGroup(ctx context.Context, id string, requester common_models.Identity) (*Group, error) {
	if _, err := s.requireMember(ctx, id, requester); err != nil {
		return nil, err
	}
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperror.NotFound("group not found")
	}
	return s.withMemberCount(ctx, g)
}

func (s *GroupServiceImpl) UpdateGroup(ctx context.Context, id string, patch UpdateGroupRequest, requester common_models.Identity) (*Group, error) {
	if err := validation.Struct(s.validate, patch); err != nil {
		return nil, err
	}

	reqMember, err := s.requireMember(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionEditGroup) {
		return nil, apperror.Forbidden("role %s cannot edit the group", reqMember.Role)
	}

	if patch.Name != nil || patch.Description != nil {
		if err := s.repo.UpdateFields(ctx, id, patch.Name, patch.Description); err != nil {
			return nil, err
		}
	}

	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperror.NotFound("group not found")
	}
	return s.withMemberCount(ctx, g)
}

func (s *GroupServiceImpl) DeleteGroup(ctx context.Context, id string, requester common_models.Identity) error {
	reqMember, err := s.requireMember(ctx, id, requester)
	if err != nil {
		return err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionDeleteGroup) {
		return apperror.Forbidden("only the owner can delete the group")
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return err
	}

	s.logger.Info("group deleted",
		zap.String("group_id", id),
		zap.String("deleted_by", requester.UserID))
	return nil
}

func (s *GroupServiceImpl) requireMember(ctx context.Context, groupID string, identity common_models.Identity) (*member.GroupMember, error) {
	m, err := s.members.FindByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.GroupID != groupID {
		return nil, apperror.Forbidden("not a member of this group")
	}
	return m, nil
}

func (s *GroupServiceImpl) withMemberCount(ctx context.Context, g *Group) (*Group, error) {
	n, err := s.members.CountByGroup(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.MemberCount = n
	return g, nil
}

func defaultGroupName(displayName string) string {
	if displayName == "" {
		return "My Group"
	}
	name := displayName + "'s Group"
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}
