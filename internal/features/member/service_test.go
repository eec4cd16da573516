package member

import (
	"context"
	"testing"
	"time"

	"go-expense/internal/common/apperror"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/permission"

	"go.uber.org/zap"
)

const testGroupID = "group-1"

func newTestService(t *testing.T) (MemberService, *MemoryMemberRepository) {
	t.Helper()
	repo := NewMemoryMemberRepository()
	return NewMemberService(repo, zap.NewNop()), repo
}

func seedMember(t *testing.T, repo *MemoryMemberRepository, id, userID string, role permission.Role, joined time.Time) *GroupMember {
	t.Helper()
	uid := userID
	m := &GroupMember{
		ID:          id,
		GroupID:     testGroupID,
		UserID:      &uid,
		DisplayName: "User " + userID,
		Email:       userID + "@example.com",
		Role:        role,
		JoinedAt:    joined,
	}
	if err := repo.Insert(context.Background(), m); err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
	return m
}

func identity(userID string) common_models.Identity {
	return common_models.Identity{
		UserID:      userID,
		DisplayName: "User " + userID,
		Email:       userID + "@example.com",
	}
}

func TestListMembersOrderedByJoinTime(t *testing.T) {
	svc, repo := newTestService(t)
	base := time.Now()

	// Inserted out of join order on purpose.
	seedMember(t, repo, "m-3", "u3", permission.RoleViewer, base.Add(2*time.Hour))
	seedMember(t, repo, "m-1", "u1", permission.RoleOwner, base)
	seedMember(t, repo, "m-2", "u2", permission.RoleMember, base.Add(time.Hour))

	members, err := svc.ListMembers(context.Background(), testGroupID, identity("u1"))
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}

	wantOrder := []string{"m-1", "m-2", "m-3"}
	if len(members) != len(wantOrder) {
		t.Fatalf("got %d members, want %d", len(members), len(wantOrder))
	}
	for i, id := range wantOrder {
		if members[i].ID != id {
			t.Errorf("member[%d] = %s, want %s", i, members[i].ID, id)
		}
	}
}

func TestListMembersNonMemberForbidden(t *testing.T) {
	svc, repo := newTestService(t)
	seedMember(t, repo, "m-1", "u1", permission.RoleOwner, time.Now())

	_, err := svc.ListMembers(context.Background(), testGroupID, identity("stranger"))
	if !apperror.IsKind(err, apperror.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestChangeRole(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		target    string
		newRole   string
		wantKind  apperror.Kind
		wantRole  permission.Role
	}{
		{
			name:      "owner promotes member to admin",
			requester: "u-owner",
			target:    "m-member",
			newRole:   "ADMIN",
			wantRole:  permission.RoleAdmin,
		},
		{
			name:      "admin demotes member to viewer",
			requester: "u-admin",
			target:    "m-member",
			newRole:   "VIEWER",
			wantRole:  permission.RoleViewer,
		},
		{
			name:      "viewer cannot change roles",
			requester: "u-viewer",
			target:    "m-member",
			newRole:   "VIEWER",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "member cannot change roles",
			requester: "u-member",
			target:    "m-viewer",
			newRole:   "MEMBER",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "owner role is immutable",
			requester: "u-admin",
			target:    "m-owner",
			newRole:   "MEMBER",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "owner cannot demote themself",
			requester: "u-owner",
			target:    "m-owner",
			newRole:   "MEMBER",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "nobody can grant owner",
			requester: "u-owner",
			target:    "m-member",
			newRole:   "OWNER",
			wantKind:  apperror.KindInvalidRole,
		},
		{
			name:      "admin cannot grant admin",
			requester: "u-admin",
			target:    "m-member",
			newRole:   "ADMIN",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "unknown role rejected",
			requester: "u-owner",
			target:    "m-member",
			newRole:   "SUPERUSER",
			wantKind:  apperror.KindInvalidRole,
		},
		{
			name:      "missing member",
			requester: "u-owner",
			target:    "m-ghost",
			newRole:   "VIEWER",
			wantKind:  apperror.KindNotFound,
		},
		{
			name:      "same role is a no-op success",
			requester: "u-owner",
			target:    "m-member",
			newRole:   "MEMBER",
			wantRole:  permission.RoleMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			base := time.Now()
			seedMember(t, repo, "m-owner", "u-owner", permission.RoleOwner, base)
			seedMember(t, repo, "m-admin", "u-admin", permission.RoleAdmin, base.Add(time.Minute))
			seedMember(t, repo, "m-member", "u-member", permission.RoleMember, base.Add(2*time.Minute))
			seedMember(t, repo, "m-viewer", "u-viewer", permission.RoleViewer, base.Add(3*time.Minute))

			updated, err := svc.ChangeRole(context.Background(), testGroupID, tt.target, tt.newRole, identity(tt.requester))
			if tt.wantKind != "" {
				if !apperror.IsKind(err, tt.wantKind) {
					t.Fatalf("expected %s, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChangeRole: %v", err)
			}
			if updated.Role != tt.wantRole {
				t.Errorf("role = %s, want %s", updated.Role, tt.wantRole)
			}

			stored, _ := repo.FindByID(context.Background(), testGroupID, tt.target)
			if stored.Role != tt.wantRole {
				t.Errorf("stored role = %s, want %s", stored.Role, tt.wantRole)
			}
		})
	}
}

func TestChangeRoleNeverBreaksOwnerInvariant(t *testing.T) {
	svc, repo := newTestService(t)
	base := time.Now()
	seedMember(t, repo, "m-owner", "u-owner", permission.RoleOwner, base)
	seedMember(t, repo, "m-member", "u-member", permission.RoleMember, base.Add(time.Minute))

	_, err := svc.ChangeRole(context.Background(), testGroupID, "m-owner", "MEMBER", identity("u-owner"))
	if err == nil {
		t.Fatal("expected owner demotion to fail")
	}

	members, _ := repo.FindByGroup(context.Background(), testGroupID)
	owners := 0
	for _, m := range members {
		if m.Role == permission.RoleOwner {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("group has %d owners, want exactly 1", owners)
	}
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		target    string
		wantKind  apperror.Kind
	}{
		{
			name:      "admin removes member",
			requester: "u-admin",
			target:    "m-member",
		},
		{
			name:      "member removes themself",
			requester: "u-member",
			target:    "m-member",
		},
		{
			name:      "viewer cannot remove others",
			requester: "u-viewer",
			target:    "m-member",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "owner can never be removed",
			requester: "u-admin",
			target:    "m-owner",
			wantKind:  apperror.KindForbidden,
		},
		{
			name:      "owner cannot remove themself",
			requester: "u-owner",
			target:    "m-owner",
			wantKind:  apperror.KindInvalidArgument,
		},
		{
			name:      "missing member",
			requester: "u-owner",
			target:    "m-ghost",
			wantKind:  apperror.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			base := time.Now()
			seedMember(t, repo, "m-owner", "u-owner", permission.RoleOwner, base)
			seedMember(t, repo, "m-admin", "u-admin", permission.RoleAdmin, base.Add(time.Minute))
			seedMember(t, repo, "m-member", "u-member", permission.RoleMember, base.Add(2*time.Minute))
			seedMember(t, repo, "m-viewer", "u-viewer", permission.RoleViewer, base.Add(3*time.Minute))

			err := svc.RemoveMember(context.Background(), testGroupID, tt.target, identity(tt.requester))
			if tt.wantKind != "" {
				if !apperror.IsKind(err, tt.wantKind) {
					t.Fatalf("expected %s, got %v", tt.wantKind, err)
				}
				stored, _ := repo.FindByID(context.Background(), testGroupID, tt.target)
				if tt.target != "m-ghost" && stored == nil {
					t.Error("failed removal must not delete the member")
				}
				return
			}
			if err != nil {
				t.Fatalf("RemoveMember: %v", err)
			}

			stored, _ := repo.FindByID(context.Background(), testGroupID, tt.target)
			if stored != nil {
				t.Error("member still present after removal")
			}
		})
	}
}
