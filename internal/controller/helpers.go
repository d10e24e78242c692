package controller

import (
	"errors"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const AppSessionHeader = "X-App-Session"

var errorStatus = map[error]int{
	service.ErrEmailTaken:             fiber.StatusConflict,
	service.ErrInvalidCredentials:     fiber.StatusUnauthorized,
	service.ErrOAuthOnlyAccount:       fiber.StatusUnauthorized,
	service.ErrUserBlocked:            fiber.StatusForbidden,
	service.ErrUnauthorized:           fiber.StatusUnauthorized,
	service.ErrInvalidResetCode:       fiber.StatusBadRequest,
	service.ErrUnsupportedProvider:    fiber.StatusBadRequest,
	service.ErrShopNotFound:           fiber.StatusNotFound,
	service.ErrInvalidShopName:        fiber.StatusBadRequest,
	service.ErrTooManyEmails:          fiber.StatusBadRequest,
	service.ErrInvalidEmail:           fiber.StatusBadRequest,
	service.ErrInvalidIntegration:     fiber.StatusBadRequest,
	service.ErrIntegrationNotFound:    fiber.StatusNotFound,
	service.ErrApiKeyRequired:         fiber.StatusBadRequest,
	service.ErrNoBillingCustomer:      fiber.StatusBadRequest,
	service.ErrPaymentProvider:        fiber.StatusBadGateway,
	service.ErrInvalidSignature:       fiber.StatusForbidden,
	service.ErrOrderNotFound:          fiber.StatusNotFound,
	service.ErrUsageDenied:            fiber.StatusPaymentRequired,
	service.ErrEmptyFeedback:          fiber.StatusBadRequest,
	service.ErrInvalidPreviewPassword: fiber.StatusUnauthorized,
	service.ErrAppSessionNotFound:     fiber.StatusNotFound,
	service.ErrInvalidView:            fiber.StatusBadRequest,
}

func statusFor(err error) int {
	for target, code := range errorStatus {
		if errors.Is(err, target) {
			return code
		}
	}
	return fiber.StatusInternalServerError
}

func fail(ctx *fiber.Ctx, err error) error {
	code := statusFor(err)
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

// currentUserID reads the id JwtMiddleware stored on the request.
func currentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	idStr, _ := ctx.Locals("user_id").(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return id, nil
}

func clientMeta(ctx *fiber.Ctx) dto.ClientMeta {
	return dto.ClientMeta{
		IpAddress:    ctx.IP(),
		UserAgent:    ctx.Get("User-Agent"),
		AppSessionId: ctx.Get(AppSessionHeader),
	}
}
