package invitation

import (
	"context"
	"strings"
	"time"

	"go-expense/internal/common/apperror"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/common/validation"
	"go-expense/internal/features/group"
	"go-expense/internal/features/member"
	"go-expense/internal/features/permission"
	"go-expense/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// invitationTTL is fixed policy: every invitation expires 7 days after
// creation.
const invitationTTL = 7 * 24 * time.Hour

// InvitationService is the invitation state machine. Expiry is lazy: every
// read path funnels through resolveExpiry, there is no background sweep.
type InvitationService interface {
	Create(ctx context.Context, req CreateInvitationRequest, requester common_models.Identity) (*Invitation, error)
	ListPending(ctx context.Context, groupID string, requester common_models.Identity) ([]Invitation, error)
	GetByToken(ctx context.Context, token string) (*InvitationWithGroup, error)
	Accept(ctx context.Context, token string, acceptor common_models.Identity) (*member.GroupMember, error)
	Decline(ctx context.Context, token string) error
}

type InvitationServiceImpl struct {
	repo     InvitationRepository
	members  member.MemberRepository
	groups   group.GroupRepository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewInvitationService(repo InvitationRepository, members member.MemberRepository, groups group.GroupRepository, validate *validator.Validate, logger *zap.Logger) InvitationService {
	return &InvitationServiceImpl{
		repo:     repo,
		members:  members,
		groups:   groups,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *InvitationServiceImpl) Create(ctx context.Context, req CreateInvitationRequest, requester common_models.Identity) (*Invitation, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	role, err := permission.ParseGrantableRole(req.Role)
	if err != nil {
		return nil, err
	}

	inviter, err := s.requireMember(ctx, req.GroupID, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(inviter.Role, permission.ActionInviteMembers) {
		return nil, apperror.Forbidden("role %s cannot invite members", inviter.Role)
	}

	now := s.now()
	inv := &Invitation{
		ID:              uuid.NewString(),
		GroupID:         req.GroupID,
		InviterMemberID: inviter.ID,
		Email:           strings.ToLower(req.Email),
		Role:            role,
		Token:           utils.NewInvitationToken(),
		Status:          StatusPending,
		Message:         req.Message,
		ExpiresAt:       now.Add(invitationTTL),
		CreatedAt:       now,
	}
	if err := s.repo.Insert(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invitation created",
		zap.String("group_id", inv.GroupID),
		zap.String("invitation_id", inv.ID),
		zap.String("role", string(role)),
		zap.String("invited_by", inviter.ID))
	return inv, nil
}

func (s *InvitationServiceImpl) ListPending(ctx context.Context, groupID string, requester common_models.Identity) ([]Invitation, error) {
	reqMember, err := s.requireMember(ctx, groupID, requester)
	if err != nil {
		return nil, err
	}
	if !permission.Allowed(reqMember.Role, permission.ActionInviteMembers) {
		return nil, apperror.Forbidden("role %s cannot view invitations", reqMember.Role)
	}

	pending, err := s.repo.FindPendingByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	// Apply lazy expiry while listing; invitations past their deadline are
	// transitioned and dropped from the result.
	live := pending[:0]
	for i := range pending {
		s.resolveExpiry(ctx, &pending[i])
		if pending[i].Status == StatusPending {
			live = append(live, pending[i])
		}
	}
	return live, nil
}

func (s *InvitationServiceImpl) GetByToken(ctx context.Context, token string) (*InvitationWithGroup, error) {
	inv, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("invitation not found")
	}
	s.resolveExpiry(ctx, inv)

	g, err := s.groups.FindByID(ctx, inv.GroupID)
	if err != nil {
		return nil, err
	}
	out := &InvitationWithGroup{Invitation: *inv}
	if g != nil {
		out.GroupName = g.Name
	}
	return out, nil
}

func (s *InvitationServiceImpl) Accept(ctx context.Context, token string, acceptor common_models.Identity) (*member.GroupMember, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	existing, err := s.members.FindByUser(ctx, acceptor.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("user already belongs to a group")
	}

	// The conditional transition is what makes a second concurrent accept
	// lose: only one caller moves PENDING to ACCEPTED.
	ok, err := s.repo.UpdateStatus(ctx, inv.ID, StatusPending, StatusAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.AlreadyProcessed("invitation has already been processed")
	}

	userID := acceptor.UserID
	displayName := acceptor.DisplayName
	if displayName == "" {
		displayName = inv.Email
	}
	m := &member.GroupMember{
		ID:          uuid.NewString(),
		GroupID:     inv.GroupID,
		UserID:      &userID,
		DisplayName: displayName,
		Email:       acceptor.Email,
		Role:        inv.Role,
		JoinedAt:    s.now(),
	}
	if err := s.members.Insert(ctx, m); err != nil {
		// The insert can still fail (storage error, or the acceptor joined
		// another group in the meantime and hit the unique user index). Put
		// the invitation back to PENDING so the token is not consumed by a
		// join that never happened.
		if _, rerr := s.repo.UpdateStatus(ctx, inv.ID, StatusAccepted, StatusPending); rerr != nil {
			s.logger.Warn("failed to revert invitation after member insert failure",
				zap.String("invitation_id", inv.ID), zap.Error(rerr))
		}
		return nil, err
	}

	s.logger.Info("invitation accepted",
		zap.String("group_id", inv.GroupID),
		zap.String("invitation_id", inv.ID),
		zap.String("member_id", m.ID))
	return m, nil
}

func (s *InvitationServiceImpl) Decline(ctx context.Context, token string) error {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return err
	}

	ok, err := s.repo.UpdateStatus(ctx, inv.ID, StatusPending, StatusDeclined)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.AlreadyProcessed("invitation has already been processed")
	}

	s.logger.Info("invitation declined",
		zap.String("group_id", inv.GroupID),
		zap.String("invitation_id", inv.ID))
	return nil
}

// pendingByToken loads an invitation and fails unless it is still PENDING
// after the lazy expiry check.
func (s *InvitationServiceImpl) pendingByToken(ctx context.Context, token string) (*Invitation, error) {
	inv, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("invitation not found")
	}
	s.resolveExpiry(ctx, inv)

	switch inv.Status {
	case StatusPending:
		return inv, nil
	case StatusExpired:
		return nil, apperror.Expired("invitation has expired")
	default:
		return nil, apperror.AlreadyProcessed("invitation has already been processed")
	}
}

// resolveExpiry is the single place the expiry policy is evaluated. A
// PENDING invitation past its deadline is transitioned to EXPIRED before any
// further logic sees it.
func (s *InvitationServiceImpl) resolveExpiry(ctx context.Context, inv *Invitation) {
	if inv.Status != StatusPending || !s.now().After(inv.ExpiresAt) {
		return
	}
	if _, err := s.repo.UpdateStatus(ctx, inv.ID, StatusPending, StatusExpired); err != nil {
		s.logger.Warn("failed to persist invitation expiry",
			zap.String("invitation_id", inv.ID), zap.Error(err))
	}
	inv.Status = StatusExpired
}

func (s *InvitationServiceImpl) requireMember(ctx context.Context, groupID string, identity common_models.Identity) (*member.GroupMember, error) {
	m, err := s.members.FindByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.GroupID != groupID {
		return nil, apperror.Forbidden("not a member of this group")
	}
	return m, nil
}
