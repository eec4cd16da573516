package member

import (
	common_models "go-expense/internal/common/models"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type MemberController struct {
	Service MemberService
}

func NewMemberController(service MemberService) *MemberController {
	return &MemberController{Service: service}
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

// ListMembers godoc
func (c *MemberController) ListMembers(ctx *fiber.Ctx) error {
	members, err := c.Service.ListMembers(ctx.UserContext(), ctx.Params("id"), identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(members)
}

// ChangeRole godoc
func (c *MemberController) ChangeRole(ctx *fiber.Ctx) error {
	var body ChangeRoleRequest
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := c.Service.ChangeRole(ctx.UserContext(), ctx.Params("id"), ctx.Params("memberId"), body.Role, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(updated)
}

// RemoveMember godoc
func (c *MemberController) RemoveMember(ctx *fiber.Ctx) error {
	if err := c.Service.RemoveMember(ctx.UserContext(), ctx.Params("id"), ctx.Params("memberId"), identityFromCtx(ctx)); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Member removed successfully",
	})
}
