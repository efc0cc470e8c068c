package controller

import (
	"errors"

	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/serverutils"
	"github.com/OffCmfrt/exchange-return-tracking/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRequestController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	ConfirmPayment(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type requestController struct {
	lifecycle service.ILifecycleService
}

func NewRequestController(lifecycle service.ILifecycleService) IRequestController {
	return &requestController{lifecycle: lifecycle}
}

func (c *requestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/requests")
	h.Post("/", c.Submit)
	h.Post("/:id/confirm-payment", c.ConfirmPayment)
	h.Get("/:id", c.Get)
}

func (c *requestController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.lifecycle.Submit(ctx.Context(), &req)
	if err != nil {
		return requestError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Request submitted", res))
}

func (c *requestController) ConfirmPayment(ctx *fiber.Ctx) error {
	var req dto.ConfirmPaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.lifecycle.ConfirmPayment(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return requestError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment confirmed", res))
}

func (c *requestController) Get(ctx *fiber.Ctx) error {
	res, err := c.lifecycle.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return requestError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Request detail", res))
}

func requestError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrOrderNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrOutsideWindow), errors.Is(err, service.ErrPaymentNotCaptured):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
}
