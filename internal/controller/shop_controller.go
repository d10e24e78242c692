package controller

import (
	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IShopController interface {
	RegisterRoutes(r fiber.Router)
	GetShop(ctx *fiber.Ctx) error
	UpdateShop(ctx *fiber.Ctx) error
	UpdateNotificationEmails(ctx *fiber.Ctx) error
	ListIntegrations(ctx *fiber.Ctx) error
	UpsertIntegration(ctx *fiber.Ctx) error
	DeleteIntegration(ctx *fiber.Ctx) error
}

type shopController struct {
	service   service.IShopService
	jwtSecret string
}

func NewShopController(service service.IShopService, jwtSecret string) IShopController {
	return &shopController{service: service, jwtSecret: jwtSecret}
}

func (c *shopController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/shop", serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("/", c.GetShop)
	h.Put("/", c.UpdateShop)
	h.Put("/notification-emails", c.UpdateNotificationEmails)
	h.Get("/integrations", c.ListIntegrations)
	h.Put("/integrations/:provider", c.UpsertIntegration)
	h.Delete("/integrations/:provider", c.DeleteIntegration)
}

func (c *shopController) GetShop(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetShopInfo(ctx.UserContext(), userId)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Shop retrieved", res))
}

func (c *shopController) UpdateShop(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateShopRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateName(ctx.UserContext(), userId, &req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Shop updated", res))
}

func (c *shopController) UpdateNotificationEmails(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateNotificationEmailsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateNotificationEmails(ctx.UserContext(), userId, &req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Notification emails updated", res))
}

func (c *shopController) ListIntegrations(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListIntegrations(ctx.UserContext(), userId)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Integrations retrieved", res))
}

func (c *shopController) UpsertIntegration(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpsertIntegrationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpsertIntegration(ctx.UserContext(), userId, ctx.Params("provider"), &req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Integration saved", res))
}

func (c *shopController) DeleteIntegration(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteIntegration(ctx.UserContext(), userId, ctx.Params("provider")); err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Integration removed", nil))
}
