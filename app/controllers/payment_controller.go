package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/billing"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// PaymentController exposes the subscription ledger. Payments are simulated.
type PaymentController struct {
	billing *billing.Service
}

func NewPaymentController(services *Services) *PaymentController {
	return &PaymentController{billing: services.Billing}
}

type subscribeRequest struct {
	PlanType string `json:"planType" form:"planType"`
}

// HandlePlans lists the plan table
func (pc *PaymentController) HandlePlans(c *fiber.Ctx) error {
	return respondOK(c, fiber.StatusOK, billing.Plans())
}

// HandleSubscribe starts a new premium period for the caller
func (pc *PaymentController) HandleSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Respond(c, apperror.Invalid("Invalid request body", err))
	}

	sub, err := pc.billing.Subscribe(c.UserContext(), usercontext.GetUserID(c), req.PlanType)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Subscription created successfully",
		"data":    sub,
	})
}

// HandleCancel ends the caller's active subscription
func (pc *PaymentController) HandleCancel(c *fiber.Ctx) error {
	if err := pc.billing.Cancel(c.UserContext(), usercontext.GetUserID(c)); err != nil {
		return apperror.Respond(c, err)
	}
	return respondMessage(c, "Subscription cancelled successfully")
}

// HandleStatus reports the caller's subscription state
func (pc *PaymentController) HandleStatus(c *fiber.Ctx) error {
	status, err := pc.billing.Status(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(status)
}
