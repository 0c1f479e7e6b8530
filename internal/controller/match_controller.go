// FILE: internal/controller/match_controller.go
package controller

import (
	"errors"

	"last20-backend/internal/dto"
	"last20-backend/internal/pkg/serverutils"
	"last20-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMatchController interface {
	RegisterRoutes(r fiber.Router)
	Match(ctx *fiber.Ctx) error
}

type matchController struct {
	service service.IMatchService
}

func NewMatchController(service service.IMatchService) IMatchController {
	return &matchController{service: service}
}

func (c *matchController) RegisterRoutes(r fiber.Router) {
	r.Post("/match", serverutils.JwtMiddleware, c.Match)
}

func (c *matchController) Match(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.MatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Match(ctx.Context(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMatchInputMissing):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		case errors.Is(err, service.ErrRequestNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		case errors.Is(err, service.ErrNotRequestOwner):
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, err.Error()))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Matched experts", res))
}
