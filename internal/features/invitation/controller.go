package invitation

import (
	common_models "go-expense/internal/common/models"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type InvitationController struct {
	Service InvitationService
}

func NewInvitationController(service InvitationService) *InvitationController {
	return &InvitationController{Service: service}
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

// CreateInvitation godoc
func (c *InvitationController) CreateInvitation(ctx *fiber.Ctx) error {
	var req CreateInvitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	inv, err := c.Service.Create(ctx.UserContext(), req, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(inv)
}

// ListPending godoc
func (c *InvitationController) ListPending(ctx *fiber.Ctx) error {
	groupID := ctx.Query("groupId")
	if groupID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "groupId query parameter is required",
		})
	}

	invitations, err := c.Service.ListPending(ctx.UserContext(), groupID, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(invitations)
}

// GetByToken godoc
func (c *InvitationController) GetByToken(ctx *fiber.Ctx) error {
	inv, err := c.Service.GetByToken(ctx.UserContext(), ctx.Params("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(inv)
}

// Accept godoc
func (c *InvitationController) Accept(ctx *fiber.Ctx) error {
	m, err := c.Service.Accept(ctx.UserContext(), ctx.Params("token"), identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Invitation accepted",
		"member":  m,
	})
}

// Decline godoc
func (c *InvitationController) Decline(ctx *fiber.Ctx) error {
	if err := c.Service.Decline(ctx.UserContext(), ctx.Params("token")); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Invitation declined",
	})
}
