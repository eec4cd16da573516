package invitelink

import (
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InviteLinkApi struct {
	controller *InviteLinkController
	config     *config.Config
}

func NewInviteLinkApi(controller *InviteLinkController, config *config.Config) *InviteLinkApi {
	return &InviteLinkApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers the invite link routes
func (h *InviteLinkApi) Setup(app *fiber.App) {
	links := app.Group("/api/invite-links", middleware.AuthMiddleware(h.config.SkipAuth))

	links.Get("/", h.controller.ListActive)
	links.Post("/", h.controller.GenerateLink)
	links.Post("/:token/join", h.controller.Join)
	links.Delete("/:id", h.controller.RevokeLink)
}
