// FILE: internal/controller/expert_controller.go
package controller

import (
	"errors"
	"strconv"

	"last20-backend/internal/dto"
	"last20-backend/internal/pkg/serverutils"
	"last20-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IExpertController interface {
	RegisterRoutes(r fiber.Router)
	CreateProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	GetMyProfile(ctx *fiber.Ctx) error
	GetProfile(ctx *fiber.Ctx) error
	ListAvailable(ctx *fiber.Ctx) error
	SetAvailability(ctx *fiber.Ctx) error
	ListReviews(ctx *fiber.Ctx) error
}

type expertController struct {
	service       service.IExpertService
	reviewService service.IReviewService
}

func NewExpertController(service service.IExpertService, reviewService service.IReviewService) IExpertController {
	return &expertController{service: service, reviewService: reviewService}
}

func (c *expertController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/experts")
	h.Get("/", c.ListAvailable)
	h.Get("/:id/reviews", c.ListReviews)

	// Protected routes. "/me" must register before "/:id" so fiber does
	// not swallow it as a path parameter.
	h.Post("/", serverutils.JwtMiddleware, c.CreateProfile)
	h.Get("/me", serverutils.JwtMiddleware, c.GetMyProfile)
	h.Put("/me", serverutils.JwtMiddleware, c.UpdateProfile)
	h.Put("/me/availability", serverutils.JwtMiddleware, c.SetAvailability)
	h.Get("/:id", c.GetProfile)
}

func (c *expertController) CreateProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateExpertProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateProfile(ctx.Context(), userId, &req)
	if err != nil {
		if errors.Is(err, service.ErrExpertProfileExists) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Expert profile created", res))
}

func (c *expertController) UpdateProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateExpertProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		if errors.Is(err, service.ErrExpertProfileNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Expert profile updated", res))
}

func (c *expertController) GetMyProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetProfileByUser(ctx.Context(), userId)
	if err != nil {
		if errors.Is(err, service.ErrExpertProfileNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Expert profile", res))
}

func (c *expertController) GetProfile(ctx *fiber.Ctx) error {
	profileId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid expert id"))
	}

	res, err := c.service.GetProfile(ctx.Context(), profileId)
	if err != nil {
		if errors.Is(err, service.ErrExpertProfileNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Expert profile", res))
}

func (c *expertController) ListAvailable(ctx *fiber.Ctx) error {
	limit, offset := paginationParams(ctx)

	res, err := c.service.ListAvailable(ctx.Context(), limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Available experts", res))
}

func (c *expertController) SetAvailability(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SetAvailabilityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.service.SetAvailability(ctx.Context(), userId, req.Available); err != nil {
		if errors.Is(err, service.ErrExpertProfileNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Availability updated", nil))
}

func (c *expertController) ListReviews(ctx *fiber.Ctx) error {
	expertId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid expert id"))
	}
	limit, offset := paginationParams(ctx)

	res, err := c.reviewService.ListByExpert(ctx.Context(), expertId, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Expert reviews", res))
}

func paginationParams(ctx *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(ctx.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(ctx.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
