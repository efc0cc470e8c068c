package controller

import (
	"encoding/json"
	"fmt"

	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/serverutils"
	"github.com/OffCmfrt/exchange-return-tracking/internal/service"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/payments"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	lifecycle     service.ILifecycleService
	webhookSecret string
}

func NewPaymentController(lifecycle service.ILifecycleService, webhookSecret string) IPaymentController {
	return &paymentController{lifecycle: lifecycle, webhookSecret: webhookSecret}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	r.Post("/payment-webhook", c.Webhook)
}

// Webhook receives signed payment events from the gateway. The signature is
// an HMAC over the raw body, so verification happens before any parsing.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	raw := ctx.Body()
	signature := ctx.Get("X-Webhook-Signature")

	fmt.Printf("[WEBHOOK] Received payment event (%d bytes)\n", len(raw))

	if !payments.VerifyWebhookSignature(raw, signature, c.webhookSecret) {
		fmt.Printf("[WEBHOOK] Signature verification failed\n")
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid signature"))
	}

	var event dto.PaymentWebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid payload"))
	}

	fmt.Printf("[WEBHOOK] Event %s for payment %s\n", event.Event, event.Payload.Payment.Entity.ID)

	if err := c.lifecycle.HandlePaymentWebhook(ctx.Context(), &event); err != nil {
		fmt.Printf("[WEBHOOK] Handling failed: %v\n", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}
