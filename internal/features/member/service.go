package member

import (
	"context"

	"go-expense/internal/common/apperror"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/permission"

	"go.uber.org/zap"
)

// MemberService owns the membership invariants: exactly one OWNER per group,
// OWNER immutability, and the removal rules. Every role change in the system
// funnels through ChangeRole.
type MemberService interface {
	ListMembers(ctx context.Context, groupID string, requester common_models.Identity) ([]GroupMember, error)
	ChangeRole(ctx context.Context, groupID, memberID, newRole string, requester common_models.Identity) (*GroupMember, error)
	RemoveMember(ctx context.Context, groupID, memberID string, requester common_models.Identity) error
	RequireMember(ctx context.Context, groupID string, requester common_models.Identity) (*GroupMember, error)
}

type MemberServiceImpl struct {
	repo   MemberRepository
	logger *zap.Logger
}

func NewMemberService(repo MemberRepository, logger *zap.Logger) MemberService {
	return &MemberServiceImpl{repo: repo, logger: logger}
}

// RequireMember resolves the requesting identity to its membership in the
// given group. Callers outside the group are rejected before any state is
// touched.
func (s *MemberServiceImpl) RequireMember(ctx context.Context, groupID string, requester common_models.Identity) (*GroupMember, error) {
	m, err := s.repo.FindByUser(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.GroupID != groupID {
		return nil, apperror.Forbidden("not a member of this group")
	}
	return m, nil
}

func (s *MemberServiceImpl) ListMembers(ctx context.Context, groupID string, requester common_models.Identity) ([]GroupMember, error) {
	reqMember, err := s.RequireMember(ctx, groupID, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionViewMembers) {
		return nil, apperror.Forbidden("role %s cannot view members", reqMember.Role)
	}
	return s.repo.FindByGroup(ctx, groupID)
}

func (s *MemberServiceImpl) ChangeRole(ctx context.Context, groupID, memberID, newRole string, requester common_models.Identity) (*GroupMember, error) {
	reqMember, err := s.RequireMember(ctx, groupID, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionChangeRoles) {
		return nil, apperror.Forbidden("role %s cannot change roles", reqMember.Role)
	}

	role, err := permission.ParseGrantableRole(newRole)
	if err != nil {
		return nil, err
	}

	target, err := s.repo.FindByID(ctx, groupID, memberID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperror.NotFound("member not found")
	}
	if target.Role == permission.RoleOwner {
		return nil, apperror.Forbidden("the owner role cannot be changed")
	}
	if !reqMember.Role.Outranks(role) {
		return nil, apperror.Forbidden("role %s cannot grant role %s", reqMember.Role, role)
	}

	if target.Role == role {
		// Idempotent no-op, surfaced distinctly for audit purposes.
		s.logger.Info("role unchanged",
			zap.String("group_id", groupID),
			zap.String("member_id", memberID),
			zap.String("role", string(role)))
		return target, nil
	}

	if err := s.repo.UpdateRole(ctx, groupID, memberID, role); err != nil {
		return nil, err
	}

	s.logger.Info("role changed",
		zap.String("group_id", groupID),
		zap.String("member_id", memberID),
		zap.String("old_role", string(target.Role)),
		zap.String("new_role", string(role)),
		zap.String("changed_by", reqMember.ID))

	target.Role = role
	return target, nil
}

func (s *MemberServiceImpl) RemoveMember(ctx context.Context, groupID, memberID string, requester common_models.Identity) error {
	reqMember, err := s.RequireMember(ctx, groupID, requester)
	if err != nil {
		return err
	}

	target, err := s.repo.FindByID(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperror.NotFound("member not found")
	}

	if target.Role == permission.RoleOwner {
		if reqMember.ID == target.ID {
			// Ownership transfer is not supported; the owner's way out is
			// deleting the group.
			return apperror.InvalidArgument("the owner cannot leave the group; delete the group instead")
		}
		return apperror.Forbidden("the group owner cannot be removed")
	}

	selfRemoval := reqMember.ID == target.ID
	if !selfRemoval && !permission.Allowed(reqMember.Role, permission.ActionRevokeMembers) {
		return apperror.Forbidden("role %s cannot remove members", reqMember.Role)
	}

	if err := s.repo.Delete(ctx, groupID, memberID); err != nil {
		return err
	}

	s.logger.Info("member removed",
		zap.String("group_id", groupID),
		zap.String("member_id", memberID),
		zap.Bool("self_removal", selfRemoval),
		zap.String("removed_by", reqMember.ID))
	return nil
}
