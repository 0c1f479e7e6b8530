// FILE: internal/controller/notification_controller.go
package controller

import (
	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/pkg/serverutils"
	"last20-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	UnreadCount(ctx *fiber.Ctx) error
	MarkAsRead(ctx *fiber.Ctx) error
	MarkAllAsRead(ctx *fiber.Ctx) error
}

type notificationController struct {
	service *service.NotificationService
}

func NewNotificationController(service *service.NotificationService) INotificationController {
	return &notificationController{service: service}
}

func (c *notificationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notifications")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/", c.List)
	h.Get("/unread-count", c.UnreadCount)
	h.Put("/read-all", c.MarkAllAsRead)
	h.Put("/:id/read", c.MarkAsRead)
}

func (c *notificationController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	limit, offset := paginationParams(ctx)

	items, total, err := c.service.GetNotifications(ctx.Context(), userId, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	res := make([]*dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		res = append(res, notificationToResponse(n))
	}
	return ctx.JSON(serverutils.SuccessResponse("Notifications", fiber.Map{
		"items": res,
		"total": total,
	}))
}

func (c *notificationController) UnreadCount(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	count, err := c.service.GetUnreadCount(ctx.Context(), userId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Unread count", fiber.Map{"count": count}))
}

func (c *notificationController) MarkAsRead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid notification id"))
	}

	if err := c.service.MarkAsRead(ctx.Context(), id); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (c *notificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.MarkAllAsRead(ctx.Context(), userId); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("All notifications marked as read", nil))
}

func notificationToResponse(n *entity.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		Id:        n.Id,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  n.Metadata,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
