package controller

import (
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	UnlockCookie    = "sp_preview_unlock"
	unlockCookieTTL = 30 * 24 * time.Hour
)

type IPublicController interface {
	RegisterRoutes(r fiber.Router)
	SubmitFeedback(ctx *fiber.Ctx) error
	Contact(ctx *fiber.Ctx) error
	JoinWaitlist(ctx *fiber.Ctx) error
	SiteStatus(ctx *fiber.Ctx) error
	Unlock(ctx *fiber.Ctx) error
}

type publicController struct {
	feedback  service.IFeedbackService
	contact   service.IContactService
	waitlist  service.IWaitlistService
	site      service.ISiteService
	jwtSecret string
}

func NewPublicController(
	feedback service.IFeedbackService,
	contact service.IContactService,
	waitlist service.IWaitlistService,
	site service.ISiteService,
	jwtSecret string,
) IPublicController {
	return &publicController{
		feedback:  feedback,
		contact:   contact,
		waitlist:  waitlist,
		site:      site,
		jwtSecret: jwtSecret,
	}
}

func (c *publicController) RegisterRoutes(r fiber.Router) {
	r.Post("/feedback", serverutils.JwtMiddleware(c.jwtSecret), c.SubmitFeedback)
	r.Post("/contact", c.Contact)
	r.Post("/waitlist", c.JoinWaitlist)

	site := r.Group("/site")
	site.Get("/status", c.SiteStatus)
	site.Post("/unlock", c.Unlock)
}

func (c *publicController) SubmitFeedback(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.feedback.Submit(ctx.UserContext(), userId, &req, clientMeta(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Thanks for the feedback", res))
}

func (c *publicController) Contact(ctx *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.contact.Send(ctx.UserContext(), &req); err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Message sent", nil))
}

func (c *publicController) JoinWaitlist(ctx *fiber.Ctx) error {
	var req dto.WaitlistRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.waitlist.Join(ctx.UserContext(), &req)
	if err != nil {
		return fail(ctx, err)
	}
	msg := "You're on the list"
	if res.AlreadyListed {
		msg = "You're already on the list"
	}
	return ctx.JSON(serverutils.SuccessResponse(msg, res))
}

func (c *publicController) SiteStatus(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Site status", c.site.Status()))
}

func (c *publicController) Unlock(ctx *fiber.Ctx) error {
	var req dto.UnlockRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	token, err := c.site.Unlock(req.Password)
	if err != nil {
		return fail(ctx, err)
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     UnlockCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(unlockCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(serverutils.SuccessResponse[any]("Unlocked", nil))
}

// MaintenanceGate rejects requests without a valid unlock cookie while the
// site is in maintenance mode.
func MaintenanceGate(site service.ISiteService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if site.IsUnlocked(ctx.Cookies(UnlockCookie)) {
			return ctx.Next()
		}
		msg := "SimpliParts is down for maintenance"
		if s := site.Status(); s != nil && s.Message != "" {
			msg = s.Message
		}
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, msg))
	}
}
