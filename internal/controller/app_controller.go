package controller

import (
	"context"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"
	internalWS "simpliparts-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IAppController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Navigate(ctx *fiber.Ctx) error
	SetMobileMenu(ctx *fiber.Ctx) error
	CheckUsage(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type appController struct {
	service service.IAppSessionService
	site    service.ISiteService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewAppController(service service.IAppSessionService, site service.ISiteService, hub *internalWS.Hub, log logger.ILogger) IAppController {
	return &appController{service: service, site: site, hub: hub, logger: log}
}

func (c *appController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/app", MaintenanceGate(c.site))
	h.Post("/sessions", c.Create)
	h.Get("/sessions/:id", c.Get)
	h.Post("/sessions/:id/navigate", c.Navigate)
	h.Post("/sessions/:id/mobile-menu", c.SetMobileMenu)
	h.Post("/sessions/:id/usage-check", c.CheckUsage)
	h.Delete("/sessions/:id", c.Delete)
	h.Get("/sessions/:id/ws", c.ServeWs)
}

// Create mounts a new app session, signed in when the request carries a
// bearer token.
func (c *appController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateAppSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	res, err := c.service.Create(ctx.UserContext(), &req, serverutils.BearerToken(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("App session created", res))
}

func (c *appController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("App session", res))
}

func (c *appController) Navigate(ctx *fiber.Ctx) error {
	var req dto.NavigateRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Navigate(ctx.UserContext(), ctx.Params("id"), req.View)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Navigated", res))
}

func (c *appController) SetMobileMenu(ctx *fiber.Ctx) error {
	var req dto.MobileMenuRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.service.SetMobileMenu(ctx.UserContext(), ctx.Params("id"), req.Open)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Mobile menu updated", res))
}

func (c *appController) CheckUsage(ctx *fiber.Ctx) error {
	res, err := c.service.CheckUsage(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *appController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("App session disposed", nil))
}

// ServeWs upgrades to a websocket that receives the current view first and
// then every subsequent change. The app session may live on another instance.
func (c *appController) ServeWs(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if _, err := c.service.CurrentView(ctx.UserContext(), id); err != nil {
		return fail(ctx, err)
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	current := func() []byte {
		v, err := c.service.CurrentView(context.Background(), id)
		if err != nil {
			return nil
		}
		return internalWS.ViewMessage(v)
	}
	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("AppController", "Starting WebSocket session", map[string]interface{}{"app_session_id": id})
		internalWS.ServeWs(c.hub, conn, id, current)
		c.logger.Info("AppController", "WebSocket session ended", map[string]interface{}{"app_session_id": id})
	})(ctx)
}
