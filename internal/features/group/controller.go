package group

import (
	common_models "go-expense/internal/common/models"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type GroupController struct {
	Service GroupService
}

func NewGroupController(service GroupService) *GroupController {
	return &GroupController{Service: service}
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

// GetCurrentGroup godoc
func (c *GroupController) GetCurrentGroup(ctx *fiber.Ctx) error {
	g, err := c.Service.GetCurrentGroup(ctx.UserContext(), identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(g)
}

// GetGroup godoc
func (c *GroupController) GetGroup(ctx *fiber.Ctx) error {
	g, err := c.Service.GetGroup(ctx.UserContext(), ctx.Params("id"), identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(g)
}

// CreateGroup godoc
func (c *GroupController) CreateGroup(ctx *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	g, err := c.Service.CreateGroup(ctx.UserContext(), req, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(g)
}

// UpdateGroup godoc
func (c *GroupController) UpdateGroup(ctx *fiber.Ctx) error {
	var patch UpdateGroupRequest
	if err := ctx.BodyParser(&patch); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	g, err := c.Service.UpdateGroup(ctx.UserContext(), ctx.Params("id"), patch, identityFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(g)
}

// DeleteGroup godoc
func (c *GroupController) DeleteGroup(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteGroup(ctx.UserContext(), ctx.Params("id"), identityFromCtx(ctx)); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Group deleted successfully",
	})
}
