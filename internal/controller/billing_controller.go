package controller

import (
	"errors"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	Checkout(ctx *fiber.Ctx) error
	Portal(ctx *fiber.Ctx) error
	UsageGuard(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type billingController struct {
	service   service.IBillingService
	jwtSecret string
	logger    logger.ILogger
}

func NewBillingController(service service.IBillingService, jwtSecret string, log logger.ILogger) IBillingController {
	return &billingController{service: service, jwtSecret: jwtSecret, logger: log}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing")
	// Midtrans posts here without a user token.
	h.Post("/webhook", c.Webhook)

	auth := serverutils.JwtMiddleware(c.jwtSecret)
	h.Post("/checkout", auth, c.Checkout)
	h.Post("/portal", auth, c.Portal)
	h.Post("/usage-guard", auth, c.UsageGuard)
}

func (c *billingController) Checkout(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.StartCheckout(ctx.UserContext(), userId)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *billingController) Portal(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.OpenBillingPortal(ctx.UserContext(), userId)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing portal ready", res))
}

// UsageGuard answers 402 with the guard result in data when usage is denied.
func (c *billingController) UsageGuard(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GuardUsage(ctx.UserContext(), userId)
	if errors.Is(err, service.ErrUsageDenied) {
		return ctx.Status(fiber.StatusPaymentRequired).JSON(serverutils.BaseResponse[*dto.UsageGuardResponse]{
			Success: false,
			Code:    fiber.StatusPaymentRequired,
			Message: err.Error(),
			Data:    res,
		})
	}
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage allowed", res))
}

func (c *billingController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notification body")
	}

	if err := c.service.HandleNotification(ctx.UserContext(), &req); err != nil {
		c.logger.Error("BILLING", "Webhook rejected", map[string]interface{}{"order_id": req.OrderId, "error": err.Error()})
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}
