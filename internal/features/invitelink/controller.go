package invitelink

import (
	common_models "go-expense/internal/common/models"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type InviteLinkController struct {
	Service InviteLinkService
}

func NewInviteLinkController(service InviteLinkService) *InviteLinkController {
	return &InviteLinkController{Service: service}
}

func identityFromCtx(ctx *fiber.Ctx) common_models.Identity {
	claims := utils.ClaimsFromCtx(ctx)
	if claims == nil {
		return common_models.Identity{}
	}
	return common_models.Identity{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
	}
}

// GenerateLink godoc
func (c *InviteLinkController) GenerateLink(ctx *fiber.Ctx) error {
	var req GenerateLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	l, err := c.Service.Generate(ctx.UserContext(), req, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(l)
}

// ListActive godoc
func (c *InviteLinkController) ListActive(ctx *fiber.Ctx) error {
	groupID := ctx.Query("groupId")
	if groupID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "groupId query parameter is required",
		})
	}

	links, err := c.Service.ListActive(ctx.UserContext(), groupID, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(links)
}

// Join godoc
func (c *InviteLinkController) Join(ctx *fiber.Ctx) error {
	result, err := c.Service.Redeem(ctx.UserContext(), ctx.Params("token"), identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(result)
}

// RevokeLink godoc
func (c *InviteLinkController) RevokeLink(ctx *fiber.Ctx) error {
	if err := c.Service.Revoke(ctx.UserContext(), ctx.Params("id"), identityFromCtx(ctx)); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Invite link revoked",
	})
}
