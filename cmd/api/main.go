package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	common_api "go-expense/internal/api"
	"go-expense/internal/common/apperror"
	"go-expense/internal/common/validation"
	"go-expense/internal/config"
	"go-expense/internal/database"
	"go-expense/internal/features/group"
	"go-expense/internal/features/invitation"
	"go-expense/internal/features/invitelink"
	"go-expense/internal/features/member"
	"go-expense/internal/features/system"
	"go-expense/internal/logger"
	"go-expense/internal/middleware"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ae *apperror.Error
			if errors.As(err, &ae) {
				body := fiber.Map{"error": ae.Message, "kind": ae.Kind}
				if ae.Kind == apperror.KindInternal {
					body["error"] = "internal error"
				}
				return c.Status(apperror.HTTPStatus(err)).JSON(body)
			}

			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures the Mongo indexes backing the uniqueness
// invariants exist before traffic arrives.
func InitializeIndexes(lc fx.Lifecycle, members *member.MongoMemberRepository, invitations *invitation.MongoInvitationRepository, links *invitelink.MongoInviteLinkRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := members.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure member indexes: %w", err)
			}
			if err := invitations.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure invitation indexes: %w", err)
			}
			if err := links.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure invite link indexes: %w", err)
			}
			return nil
		},
	})
}

// storageOption selects the persistence gateway implementation. Both
// backends satisfy the same repository interfaces; everything above them is
// oblivious to the choice.
func storageOption(backend string) fx.Option {
	switch backend {
	case "postgres":
		return fx.Provide(
			database.NewPostgres,
			member.NewPostgresMemberRepository,
			group.NewPostgresGroupRepository,
			invitation.NewPostgresInvitationRepository,
			invitelink.NewPostgresInviteLinkRepository,
			func(r *member.PostgresMemberRepository) member.MemberRepository { return r },
			func(r *group.PostgresGroupRepository) group.GroupRepository { return r },
			func(r *invitation.PostgresInvitationRepository) invitation.InvitationRepository { return r },
			func(r *invitelink.PostgresInviteLinkRepository) invitelink.InviteLinkRepository { return r },
		)
	default:
		return fx.Options(
			fx.Provide(
				database.NewDatabase,
				member.NewMongoMemberRepository,
				group.NewMongoGroupRepository,
				invitation.NewMongoInvitationRepository,
				invitelink.NewMongoInviteLinkRepository,
				func(r *member.MongoMemberRepository) member.MemberRepository { return r },
				func(r *group.MongoGroupRepository) group.GroupRepository { return r },
				func(r *invitation.MongoInvitationRepository) invitation.InvitationRepository { return r },
				func(r *invitelink.MongoInviteLinkRepository) invitelink.InviteLinkRepository { return r },
			),
			fx.Invoke(InitializeIndexes),
		)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	utils.SetSecret(cfg.JWTSecret)

	app := fx.New(
		fx.Supply(cfg),
		storageOption(cfg.StorageBackend),
		fx.Provide(
			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Shared request validator
			validation.New,

			// Initialize Services
			member.NewMemberService,
			group.NewGroupService,
			invitation.NewInvitationService,
			invitelink.NewInviteLinkService,

			// Initialize Controllers
			member.NewMemberController,
			group.NewGroupController,
			invitation.NewInvitationController,
			invitelink.NewInviteLinkController,

			// Initialize API Routes
			AsRoute(group.NewGroupApi),
			AsRoute(member.NewMemberApi),
			AsRoute(invitation.NewInvitationApi),
			AsRoute(invitelink.NewInviteLinkApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
		),
	)

	app.Run()
}
