package main

import (
	"context"
	"log"
	"time"

	"go-expense/internal/common/models"
	"go-expense/internal/common/validation"
	"go-expense/internal/config"
	"go-expense/internal/database"
	"go-expense/internal/features/group"
	"go-expense/internal/features/invitation"
	"go-expense/internal/features/invitelink"
	"go-expense/internal/features/member"
	"go-expense/internal/logger"
	"go-expense/pkg/utils"

	"go.uber.org/fx"
)

// Seeds the Mongo backend with a demo group, a pending invitation, and a
// single-use viewer link, then prints the tokens for manual testing.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	utils.SetSecret(cfg.JWTSecret)

	app := fx.New(
		fx.Supply(cfg),
		fx.NopLogger,
		fx.Provide(
			logger.NewLogger,
			validation.New,
			database.NewDatabase,
			member.NewMongoMemberRepository,
			group.NewMongoGroupRepository,
			invitation.NewMongoInvitationRepository,
			invitelink.NewMongoInviteLinkRepository,
			func(r *member.MongoMemberRepository) member.MemberRepository { return r },
			func(r *group.MongoGroupRepository) group.GroupRepository { return r },
			func(r *invitation.MongoInvitationRepository) invitation.InvitationRepository { return r },
			func(r *invitelink.MongoInviteLinkRepository) invitelink.InviteLinkRepository { return r },
			member.NewMemberService,
			group.NewGroupService,
			invitation.NewInvitationService,
			invitelink.NewInviteLinkService,
		),
		fx.Invoke(seed),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	if err := app.Stop(ctx); err != nil {
		log.Fatalf("Shutdown failed: %v", err)
	}
}

func seed(groups group.GroupService, invitations invitation.InvitationService, links invitelink.InviteLinkService) error {
	ctx := context.Background()

	owner := models.Identity{
		UserID:      "demo-owner",
		DisplayName: "Demo Owner",
		Email:       "owner@example.com",
	}

	g, err := groups.CreateGroup(ctx, group.CreateGroupRequest{
		Name:        "Family Budget",
		Description: "Household expenses",
	}, owner)
	if err != nil {
		return err
	}
	log.Printf("Created group %s (%s)", g.Name, g.ID)

	inv, err := invitations.Create(ctx, invitation.CreateInvitationRequest{
		GroupID: g.ID,
		Email:   "partner@example.com",
		Role:    "MEMBER",
		Message: "Join our budget!",
	}, owner)
	if err != nil {
		return err
	}
	log.Printf("Invitation token: %s", inv.Token)

	maxUses := 1
	l, err := links.Generate(ctx, invitelink.GenerateLinkRequest{
		GroupID: g.ID,
		Role:    "VIEWER",
		MaxUses: &maxUses,
	}, owner)
	if err != nil {
		return err
	}
	log.Printf("Invite link token: %s", l.Token)

	token, err := utils.GenerateToken(owner.UserID, owner.DisplayName, owner.Email)
	if err != nil {
		return err
	}
	log.Printf("Owner bearer token: %s", token)
	return nil
}
