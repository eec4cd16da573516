package invitation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-expense/internal/common/apperror"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/common/validation"
	"go-expense/internal/features/group"
	"go-expense/internal/features/member"
	"go-expense/internal/features/permission"

	"go.uber.org/zap"
)

const testGroupID = "g1"

type testEnv struct {
	svc     *InvitationServiceImpl
	invites *MemoryInvitationRepository
	members *member.MemoryMemberRepository
	groups  *group.MemoryGroupRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	invites := NewMemoryInvitationRepository()
	members := member.NewMemoryMemberRepository()
	groups := group.NewMemoryGroupRepository()

	if err := groups.Insert(context.Background(), &group.Group{
		ID:          testGroupID,
		Name:        "Family Budget",
		OwnerUserID: "u-owner",
		CreatedAt:   time.Now(),
	}); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	svc := NewInvitationService(invites, members, groups, validation.New(), zap.NewNop()).(*InvitationServiceImpl)
	return &testEnv{svc: svc, invites: invites, members: members, groups: groups}
}

func (e *testEnv) seedMember(t *testing.T, id, userID string, role permission.Role) {
	t.Helper()
	m := &member.GroupMember{
		ID:          id,
		GroupID:     testGroupID,
		DisplayName: "User " + userID,
		Email:       userID + "@example.com",
		Role:        role,
		JoinedAt:    time.Now(),
	}
	if userID != "" {
		m.UserID = &userID
	}
	if err := e.members.Insert(context.Background(), m); err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
}

func identity(userID, name string) common_models.Identity {
	return common_models.Identity{
		UserID:      userID,
		DisplayName: name,
		Email:       userID + "@example.com",
	}
}

func TestCreateInvitation(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		req       CreateInvitationRequest
		wantKind  apperror.Kind
	}{
		{
			name:      "admin invites member",
			requester: "u-admin",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "New@Example.com", Role: "MEMBER"},
		},
		{
			name:      "owner invites admin with message",
			requester: "u-owner",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "new@example.com", Role: "ADMIN", Message: "join us"},
		},
		{
			name:      "owner role cannot be granted",
			requester: "u-owner",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "new@example.com", Role: "OWNER"},
			wantKind:  apperror.KindInvalidRole,
		},
		{
			name:      "unknown role",
			requester: "u-owner",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "new@example.com", Role: "SUPERUSER"},
			wantKind:  apperror.KindInvalidRole,
		},
		{
			name:      "malformed email",
			requester: "u-owner",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "not-an-email", Role: "MEMBER"},
			wantKind:  apperror.KindInvalidArgument,
		},
		{
			name:      "plain member cannot invite",
			requester: "u-member",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "new@example.com", Role: "VIEWER"},
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "outsider cannot invite",
			requester: "u-stranger",
			req:       CreateInvitationRequest{GroupID: testGroupID, Email: "new@example.com", Role: "MEMBER"},
			wantKind:  apperror.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)
			env.seedMember(t, "m-admin", "u-admin", permission.RoleAdmin)
			env.seedMember(t, "m-member", "u-member", permission.RoleMember)

			inv, err := env.svc.Create(context.Background(), tt.req, identity(tt.requester, "Requester"))
			if tt.wantKind != "" {
				if !apperror.IsKind(err, tt.wantKind) {
					t.Fatalf("expected %s, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if inv.Status != StatusPending {
				t.Errorf("status = %s, want PENDING", inv.Status)
			}
			if inv.Email != "new@example.com" {
				t.Errorf("email = %q, want lowercased new@example.com", inv.Email)
			}
			if inv.Token == "" {
				t.Error("token not generated")
			}
			if want := env.svc.now().Add(invitationTTL); inv.ExpiresAt.Sub(want) > time.Second || want.Sub(inv.ExpiresAt) > time.Second {
				t.Errorf("expiry = %v, want ~%v", inv.ExpiresAt, want)
			}
		})
	}
}

func TestCreateDuplicatePendingInvitation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)
	owner := identity("u-owner", "Alice")

	req := CreateInvitationRequest{GroupID: testGroupID, Email: "bob@example.com", Role: "MEMBER"}
	if _, err := env.svc.Create(context.Background(), req, owner); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same email differing only in case still collides.
	req.Email = "BOB@example.com"
	_, err := env.svc.Create(context.Background(), req, owner)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestAcceptInvitation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)

	inv, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "partner@example.com", Role: "MEMBER"},
		identity("u-owner", "Alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	m, err := env.svc.Accept(context.Background(), inv.Token, identity("u2", "Bob"))
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if m.Role != permission.RoleMember {
		t.Errorf("joined role = %s, want MEMBER", m.Role)
	}
	if m.GroupID != testGroupID {
		t.Errorf("joined group = %s, want %s", m.GroupID, testGroupID)
	}
	count, _ := env.members.CountByGroup(context.Background(), testGroupID)
	if count != 2 {
		t.Errorf("member count = %d, want 2", count)
	}

	// A second accept of the same token must not add another member.
	_, err = env.svc.Accept(context.Background(), inv.Token, identity("u3", "Carol"))
	if !apperror.IsKind(err, apperror.KindAlreadyProcessed) {
		t.Fatalf("second accept: expected AlreadyProcessed, got %v", err)
	}
	count, _ = env.members.CountByGroup(context.Background(), testGroupID)
	if count != 2 {
		t.Errorf("member count after replay = %d, want 2", count)
	}
}

// failingMemberRepository lets a test break the membership insert that
// follows the status transition.
type failingMemberRepository struct {
	member.MemberRepository
	failInsert bool
}

func (r *failingMemberRepository) Insert(ctx context.Context, m *member.GroupMember) error {
	if r.failInsert {
		return apperror.Internal("insert member", errors.New("storage unavailable"))
	}
	return r.MemberRepository.Insert(ctx, m)
}

func TestAcceptRevertsOnMemberInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)
	failing := &failingMemberRepository{MemberRepository: env.members}
	env.svc.members = failing

	inv, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "partner@example.com", Role: "MEMBER"},
		identity("u-owner", "Alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	failing.failInsert = true
	if _, err := env.svc.Accept(context.Background(), inv.Token, identity("u2", "Bob")); err == nil {
		t.Fatal("Accept succeeded despite failing member insert")
	}

	// The failed join must not consume the token: status reverts to PENDING
	// and no membership exists.
	stored, _ := env.invites.FindByToken(context.Background(), inv.Token)
	if stored.Status != StatusPending {
		t.Fatalf("status after failed accept = %s, want PENDING", stored.Status)
	}
	if m, _ := env.members.FindByUser(context.Background(), "u2"); m != nil {
		t.Fatal("member record exists despite failed insert")
	}

	// Once storage recovers the same token works.
	failing.failInsert = false
	m, err := env.svc.Accept(context.Background(), inv.Token, identity("u2", "Bob"))
	if err != nil {
		t.Fatalf("retry Accept: %v", err)
	}
	if m.Role != permission.RoleMember {
		t.Errorf("joined role = %s, want MEMBER", m.Role)
	}
}

func TestAcceptWhileAlreadyInAGroup(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)
	env.seedMember(t, "m-bob", "u2", permission.RoleViewer)

	inv, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "bob@example.com", Role: "MEMBER"},
		identity("u-owner", "Alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = env.svc.Accept(context.Background(), inv.Token, identity("u2", "Bob"))
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}

	// The failed accept must leave the invitation usable for someone else.
	stored, _ := env.invites.FindByToken(context.Background(), inv.Token)
	if stored.Status != StatusPending {
		t.Errorf("status after rejected accept = %s, want PENDING", stored.Status)
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)

	inv, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "late@example.com", Role: "MEMBER"},
		identity("u-owner", "Alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	env.svc.now = func() time.Time { return time.Now().Add(invitationTTL + time.Hour) }

	_, err = env.svc.Accept(context.Background(), inv.Token, identity("u2", "Bob"))
	if !apperror.IsKind(err, apperror.KindExpired) {
		t.Fatalf("expected Expired, got %v", err)
	}

	// Lazy expiry persists the transition.
	stored, _ := env.invites.FindByToken(context.Background(), inv.Token)
	if stored.Status != StatusExpired {
		t.Errorf("status = %s, want EXPIRED", stored.Status)
	}
}

func TestDeclineInvitation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)

	inv, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "no@example.com", Role: "MEMBER"},
		identity("u-owner", "Alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.svc.Decline(context.Background(), inv.Token); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	stored, _ := env.invites.FindByToken(context.Background(), inv.Token)
	if stored.Status != StatusDeclined {
		t.Errorf("status = %s, want DECLINED", stored.Status)
	}

	err = env.svc.Decline(context.Background(), inv.Token)
	if !apperror.IsKind(err, apperror.KindAlreadyProcessed) {
		t.Fatalf("second decline: expected AlreadyProcessed, got %v", err)
	}
}

func TestGetByToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)

	inv, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "peek@example.com", Role: "VIEWER"},
		identity("u-owner", "Alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := env.svc.GetByToken(context.Background(), inv.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.GroupName != "Family Budget" {
		t.Errorf("group name = %q, want %q", got.GroupName, "Family Budget")
	}
	if got.Role != permission.RoleViewer {
		t.Errorf("role = %s, want VIEWER", got.Role)
	}

	_, err = env.svc.GetByToken(context.Background(), "no-such-token")
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("unknown token: expected NotFound, got %v", err)
	}
}

func TestListPendingLazilyExpires(t *testing.T) {
	env := newTestEnv(t)
	env.seedMember(t, "m-owner", "u-owner", permission.RoleOwner)
	env.seedMember(t, "m-viewer", "u-viewer", permission.RoleViewer)
	owner := identity("u-owner", "Alice")

	fresh, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "fresh@example.com", Role: "MEMBER"},
		owner)
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	// Create one invitation in the past so only it crosses the deadline.
	env.svc.now = func() time.Time { return time.Now().Add(-invitationTTL - time.Hour) }
	stale, err := env.svc.Create(context.Background(),
		CreateInvitationRequest{GroupID: testGroupID, Email: "stale@example.com", Role: "MEMBER"},
		owner)
	if err != nil {
		t.Fatalf("create stale: %v", err)
	}
	env.svc.now = time.Now

	pending, err := env.svc.ListPending(context.Background(), testGroupID, owner)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != fresh.ID {
		t.Fatalf("pending = %+v, want only the fresh invitation", pending)
	}

	stored, _ := env.invites.FindByToken(context.Background(), stale.Token)
	if stored.Status != StatusExpired {
		t.Errorf("stale status = %s, want EXPIRED", stored.Status)
	}

	_, err = env.svc.ListPending(context.Background(), testGroupID, identity("u-viewer", "Eve"))
	if !apperror.IsKind(err, apperror.KindForbidden) {
		t.Fatalf("viewer list: expected Forbidden, got %v", err)
	}
}
