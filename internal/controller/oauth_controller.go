package controller

import (
	"fmt"
	"net/url"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
	logger    logger.ILogger
}

func NewOAuthController(service service.IOAuthService, clientURL string, log logger.ILogger) IOAuthController {
	return &oauthController{service: service, clientURL: clientURL, logger: log}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	// e.g. /auth/google/login
	h := r.Group("/auth")
	h.Get("/:provider/login", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	res, err := c.service.GetLoginURL(provider)
	if err != nil {
		return fail(ctx, err)
	}

	c.logger.Info("OAUTH", "Login initiated", map[string]interface{}{"provider": provider})
	return ctx.Redirect(res.URL, fiber.StatusTemporaryRedirect)
}

// Callback sends the browser back to the frontend login page with the token.
func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	res, err := c.service.HandleCallback(ctx.UserContext(), provider, code)
	if err != nil {
		c.logger.Error("OAUTH", "Callback failed", map[string]interface{}{"provider": provider, "error": err.Error()})
		return fail(ctx, err)
	}

	redirectURL := fmt.Sprintf("%s/login?token=%s", c.clientURL, url.QueryEscape(res.AccessToken))
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
