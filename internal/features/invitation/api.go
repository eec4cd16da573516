package invitation

import (
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InvitationApi struct {
	controller *InvitationController
	config     *config.Config
}

func NewInvitationApi(controller *InvitationController, config *config.Config) *InvitationApi {
	return &InvitationApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers the invitation routes
func (h *InvitationApi) Setup(app *fiber.App) {
	invitations := app.Group("/api/invitations", middleware.AuthMiddleware(h.config.SkipAuth))

	invitations.Get("/", h.controller.ListPending)
	invitations.Post("/", h.controller.CreateInvitation)
	invitations.Get("/:token", h.controller.GetByToken)
	invitations.Post("/:token/accept", h.controller.Accept)
	invitations.Post("/:token/decline", h.controller.Decline)
}
