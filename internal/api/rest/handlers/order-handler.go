package handlers

import (
	"errors"

	"github.com/fieldflow/timelog_service/internal/domain"
	"github.com/fieldflow/timelog_service/internal/dto"
	"github.com/fieldflow/timelog_service/internal/helper/utils"
	"github.com/fieldflow/timelog_service/internal/repository"
	"github.com/fieldflow/timelog_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler exposes the minimal order surface this service needs: admins
// create orders for workers to clock in against, and deleting an order
// cascades away its time logs.
type OrderHandler struct {
	orderRepo repository.OrderRepository
	userSvc   services.UserService
}

func NewOrderHandler(orderRepo repository.OrderRepository, userSvc services.UserService) *OrderHandler {
	return &OrderHandler{orderRepo: orderRepo, userSvc: userSvc}
}

func (h *OrderHandler) SetupRoutes(api fiber.Router, adminOnly fiber.Handler) {
	orders := api.Group("/orders", adminOnly)
	orders.Post("/", h.Create)
	orders.Delete("/:orderID", h.Delete)
}

func (h *OrderHandler) Create(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.CreateOrderRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Title == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "title is required")
	}

	actor, err := h.userSvc.GetProfile(actorID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	status := requestBody.Status
	if status == "" {
		status = "open"
	}

	order, err := h.orderRepo.CreateOrder(&domain.Order{
		OrganisationID: actor.OrganisationID,
		Title:          requestBody.Title,
		Status:         status,
	})
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, order)
}

func (h *OrderHandler) Delete(ctx *fiber.Ctx) error {
	orderID, err := parseID(ctx, "orderID")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid order id")
	}

	if _, err := h.orderRepo.FindOrderById(orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.orderRepo.DeleteOrder(orderID); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "order deleted")
}
