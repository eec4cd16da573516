package member

import (
	"go-expense/internal/config"
	"go-expense/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MemberApi struct {
	controller *MemberController
	config     *config.Config
}

func NewMemberApi(controller *MemberController, config *config.Config) *MemberApi {
	return &MemberApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers the membership routes
func (h *MemberApi) Setup(app *fiber.App) {
	members := app.Group("/api/groups/:id/members", middleware.AuthMiddleware(h.config.SkipAuth))

	members.Get("/", h.controller.ListMembers)
	members.Patch("/:memberId/role", h.controller.ChangeRole)
	members.Delete("/:memberId", h.controller.RemoveMember)
}
