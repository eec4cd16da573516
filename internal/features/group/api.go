package group

import (
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type GroupApi struct {
	controller *GroupController
	config     *config.Config
}

func NewGroupApi(controller *GroupController, config *config.Config) *GroupApi {
	return &GroupApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers the group lifecycle routes
func (h *GroupApi) Setup(app *fiber.App) {
	groups := app.Group("/api/groups", middleware.AuthMiddleware(h.config.SkipAuth))

	groups.Get("/current", h.controller.GetCurrentGroup)
	groups.Get("/:id", h.controller.GetGroup)
	groups.Post("/", h.controller.CreateGroup)
	groups.Patch("/:id", h.controller.UpdateGroup)
	groups.Delete("/:id", h.controller.DeleteGroup)
}
