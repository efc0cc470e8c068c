package controller

import (
	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/logger"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/serverutils"
	"github.com/OffCmfrt/exchange-return-tracking/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	MarkDelivered(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
	BulkDelete(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogById(ctx *fiber.Ctx) error
}

type adminController struct {
	authService service.IAuthService
	lifecycle   service.ILifecycleService
	sweeper     service.ISweeperService
	sysLogger   logger.ILogger
}

func NewAdminController(
	authService service.IAuthService,
	lifecycle service.ILifecycleService,
	sweeper service.ISweeperService,
	sysLogger logger.ILogger,
) IAdminController {
	return &adminController{
		authService: authService,
		lifecycle:   lifecycle,
		sweeper:     sweeper,
		sysLogger:   sysLogger,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/login", c.Login)

	secured := h.Group("", serverutils.JwtMiddleware, serverutils.AdminMiddleware)
	secured.Get("/requests", c.List)
	secured.Post("/requests/bulk-delete", c.BulkDelete)
	secured.Post("/requests/:id/approve", c.Approve)
	secured.Post("/requests/:id/reject", c.Reject)
	secured.Post("/requests/:id/mark-delivered", c.MarkDelivered)
	secured.Post("/sync", c.Sync)
	secured.Get("/logs", c.GetLogs)
	secured.Get("/logs/:id", c.GetLogById)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.authService.LoginAdmin(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *adminController) List(ctx *fiber.Ctx) error {
	var q dto.AdminListQuery
	if err := ctx.QueryParser(&q); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}

	res, err := c.lifecycle.List(ctx.Context(), &q)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Requests", res))
}

func (c *adminController) Approve(ctx *fiber.Ctx) error {
	var req dto.AdminActionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.lifecycle.Approve(ctx.Context(), ctx.Params("id"), req.Notes)
	if err != nil {
		return requestError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Request approved", res))
}

func (c *adminController) Reject(ctx *fiber.Ctx) error {
	var req dto.AdminActionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.lifecycle.Reject(ctx.Context(), ctx.Params("id"), req.Notes)
	if err != nil {
		return requestError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Request rejected", res))
}

func (c *adminController) MarkDelivered(ctx *fiber.Ctx) error {
	res, err := c.lifecycle.MarkDelivered(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return requestError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Request marked delivered", res))
}

func (c *adminController) Sync(ctx *fiber.Ctx) error {
	updated, err := c.sweeper.Sweep(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Sync complete", dto.AdminSyncResponse{Updated: updated}))
}

func (c *adminController) BulkDelete(ctx *fiber.Ctx) error {
	var req dto.AdminBulkDeleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	deleted, err := c.lifecycle.BulkDelete(ctx.Context(), req.RequestIDs)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Requests deleted", fiber.Map{"deleted": deleted}))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	level := ctx.Query("level")
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	logs, err := c.sysLogger.GetLogs(level, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs", logs))
}

func (c *adminController) GetLogById(ctx *fiber.Ctx) error {
	entry, err := c.sysLogger.GetLogById(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log entry", entry))
}
