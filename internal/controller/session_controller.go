// FILE: internal/controller/session_controller.go
package controller

import (
	"errors"

	"last20-backend/internal/dto"
	"last20-backend/internal/pkg/serverutils"
	"last20-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Book(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/", c.Book)
	h.Get("/", c.List)
	h.Get("/:id", c.Get)
	h.Post("/:id/start", c.Start)
	h.Post("/:id/end", c.End)
	h.Post("/:id/cancel", c.Cancel)
}

func (c *sessionController) Book(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.BookSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Book(ctx.Context(), userId, &req)
	if err != nil {
		return sessionErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session booked", res))
}

func (c *sessionController) Get(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.Context(), userId, sessionId)
	if err != nil {
		return sessionErrorResponse(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session", res))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	limit, offset := paginationParams(ctx)

	res, err := c.service.ListByUser(ctx.Context(), userId, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions", res))
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Start(ctx.Context(), userId, sessionId)
	if err != nil {
		return sessionErrorResponse(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.End(ctx.Context(), userId, sessionId)
	if err != nil {
		return sessionErrorResponse(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session ended", res))
}

func (c *sessionController) Cancel(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Cancel(ctx.Context(), userId, sessionId); err != nil {
		return sessionErrorResponse(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session cancelled", nil))
}

func sessionParams(ctx *fiber.Ctx) (userId, sessionId uuid.UUID, err error) {
	userId, err = serverutils.CurrentUserID(ctx)
	if err != nil {
		return userId, sessionId, err
	}

	sessionId, err = uuid.Parse(ctx.Params("id"))
	if err != nil {
		return userId, sessionId, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return userId, sessionId, nil
}

func sessionErrorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrExpertProfileNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrNotSessionParticipant),
		errors.Is(err, service.ErrNotRequestOwner):
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
	case errors.Is(err, service.ErrSessionWrongStatus),
		errors.Is(err, service.ErrRequestNotOpen),
		errors.Is(err, service.ErrExpertUnavailable):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
}
