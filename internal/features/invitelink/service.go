package invitelink

import (
	"context"
	"time"

	"go-expense/internal/common/apperror"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/common/validation"
	"go-expense/internal/features/member"
	"go-expense/internal/features/permission"
	"go-expense/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// linkTTL matches the invitation expiry policy: links die 7 days after
// creation unless revoked or exhausted first.
const linkTTL = 7 * 24 * time.Hour

// InviteLinkService manages shareable join links. A link is a counter plus
// guards rather than a per-user state machine; all guard evaluation happens
// on access, never on a timer.
type InviteLinkService interface {
	Generate(ctx context.Context, req GenerateLinkRequest, requester common_models.Identity) (*InviteLink, error)
	ListActive(ctx context.Context, groupID string, requester common_models.Identity) ([]InviteLink, error)
	Redeem(ctx context.Context, token string, joiner common_models.Identity) (*JoinResult, error)
	Revoke(ctx context.Context, linkID string, requester common_models.Identity) error
}

type InviteLinkServiceImpl struct {
	repo     InviteLinkRepository
	members  member.MemberRepository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewInviteLinkService(repo InviteLinkRepository, members member.MemberRepository, validate *validator.Validate, logger *zap.Logger) InviteLinkService {
	return &InviteLinkServiceImpl{
		repo:     repo,
		members:  members,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *InviteLinkServiceImpl) Generate(ctx context.Context, req GenerateLinkRequest, requester common_models.Identity) (*InviteLink, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	role, err := permission.ParseGrantableRole(req.Role)
	if err != nil {
		return nil, err
	}

	creator, err := s.requireMember(ctx, req.GroupID, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(creator.Role, permission.ActionInviteMembers) {
		return nil, apperror.Forbidden("role %s cannot create invite links", creator.Role)
	}

	token, err := utils.NewLinkToken()
	if err != nil {
		return nil, apperror.Internal("generate link token", err)
	}

	now := s.now()
	l := &InviteLink{
		ID:              uuid.NewString(),
		GroupID:         req.GroupID,
		CreatorMemberID: creator.ID,
		Token:           token,
		Role:            role,
		MaxUses:         req.MaxUses,
		Uses:            0,
		ExpiresAt:       now.Add(linkTTL),
		IsActive:        true,
		CreatedAt:       now,
	}
	if err := s.repo.Insert(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("invite link created",
		zap.String("group_id", l.GroupID),
		zap.String("link_id", l.ID),
		zap.String("role", string(role)),
		zap.String("created_by", creator.ID))
	return l, nil
}

func (s *InviteLinkServiceImpl) ListActive(ctx context.Context, groupID string, requester common_models.Identity) ([]InviteLink, error) {
	reqMember, err := s.requireMember(ctx, groupID, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionInviteMembers) {
		return nil, apperror.Forbidden("role %s cannot view invite links", reqMember.Role)
	}

	links, err := s.repo.FindActiveByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	// Drop links that are dead on arrival: expired or exhausted ones stay
	// stored but are no longer part of the active set.
	now := s.now()
	live := links[:0]
	for _, l := range links {
		if l.ExpiresAt.After(now) && !l.Exhausted() {
			live = append(live, l)
		}
	}
	return live, nil
}

func (s *InviteLinkServiceImpl) Redeem(ctx context.Context, token string, joiner common_models.Identity) (*JoinResult, error) {
	l, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperror.NotFound("invite link not found")
	}
	if err := s.classify(l); err != nil {
		return nil, err
	}

	existing, err := s.members.FindByUser(ctx, joiner.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("user already belongs to a group")
	}

	// The guards above produce precise errors; the authoritative decision is
	// this conditional increment. Whoever loses the race re-reads the link
	// to learn which guard closed in the meantime.
	claimed, err := s.repo.Redeem(ctx, l.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		fresh, err := s.repo.FindByID(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			return nil, apperror.NotFound("invite link not found")
		}
		if err := s.classify(fresh); err != nil {
			return nil, err
		}
		return nil, apperror.Exhausted("invite link has no uses left")
	}

	userID := joiner.UserID
	displayName := joiner.DisplayName
	if displayName == "" {
		displayName = joiner.Email
	}
	m := &member.GroupMember{
		ID:          uuid.NewString(),
		GroupID:     l.GroupID,
		UserID:      &userID,
		DisplayName: displayName,
		Email:       joiner.Email,
		Role:        l.Role,
		JoinedAt:    s.now(),
	}
	if err := s.members.Insert(ctx, m); err != nil {
		// Give the claimed use back so a failed join does not eat into the
		// link's budget.
		if rerr := s.repo.Release(ctx, l.ID); rerr != nil {
			s.logger.Warn("failed to release invite link use after member insert failure",
				zap.String("link_id", l.ID), zap.Error(rerr))
		}
		return nil, err
	}

	s.logger.Info("invite link redeemed",
		zap.String("group_id", l.GroupID),
		zap.String("link_id", l.ID),
		zap.String("member_id", m.ID))

	return &JoinResult{
		GroupID:  l.GroupID,
		MemberID: m.ID,
		Role:     l.Role,
	}, nil
}

func (s *InviteLinkServiceImpl) Revoke(ctx context.Context, linkID string, requester common_models.Identity) error {
	l, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		return err
	}
	if l == nil {
		return apperror.NotFound("invite link not found")
	}

	reqMember, err := s.requireMember(ctx, l.GroupID, requester)
	if err != nil {
		return err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionInviteMembers) {
		return apperror.Forbidden("role %s cannot revoke invite links", reqMember.Role)
	}

	// Revoking an already-revoked link is a no-op success.
	if err := s.repo.Deactivate(ctx, linkID); err != nil {
		return err
	}

	s.logger.Info("invite link revoked",
		zap.String("group_id", l.GroupID),
		zap.String("link_id", linkID),
		zap.String("revoked_by", reqMember.ID))
	return nil
}

// classify translates a dead link into its error, checked in the order the
// API contract fixes: revoked, then expired, then exhausted.
func (s *InviteLinkServiceImpl) classify(l *InviteLink) error {
	if !l.IsActive {
		return apperror.Revoked("invite link has been revoked")
	}
	if s.now().After(l.ExpiresAt) {
		return apperror.Expired("invite link has expired")
	}
	if l.Exhausted() {
		return apperror.Exhausted("invite link has no uses left")
	}
	return nil
}

func (s *InviteLinkServiceImpl) requireMember(ctx context.Context, groupID string, identity common_models.Identity) (*member.GroupMember, error) {
	m, err := s.members.FindByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.GroupID != groupID {
		return nil, apperror.Forbidden("not a member of this group")
	}
	return m, nil
}
