package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/fieldflow/timelog_service/internal/dto"
	"github.com/fieldflow/timelog_service/internal/helper"
	"github.com/fieldflow/timelog_service/internal/helper/utils"
	"github.com/fieldflow/timelog_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TimeLogHandler struct {
	svc  services.TimeLogService
	auth helper.Auth
}

func NewTimeLogHandler(svc services.TimeLogService, auth helper.Auth) *TimeLogHandler {
	return &TimeLogHandler{svc: svc, auth: auth}
}

func (h *TimeLogHandler) SetupRoutes(api fiber.Router) {
	logs := api.Group("/timelogs")

	logs.Post("/", h.Start)
	logs.Get("/", h.List)
	logs.Get("/pending", h.ListPending)
	logs.Get("/:timeLogID", h.Get)
	logs.Put("/:timeLogID", h.Update)
	logs.Post("/:timeLogID/approve", h.Approve)
}

func (h *TimeLogHandler) Start(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.StartTimeLogRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if requestBody.OrderID == 0 || requestBody.StartTime.IsZero() {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "order_id and start_time are required")
	}

	entry, err := h.svc.Start(actorID, requestBody)
	if err != nil {
		return respondServiceError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, entry)
}

func (h *TimeLogHandler) Get(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	timeLogID, err := parseID(ctx, "timeLogID")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid time log id")
	}

	entry, err := h.svc.Get(actorID, timeLogID)
	if err != nil {
		return respondServiceError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, entry)
}

// List returns the actor's own logs, or another worker's logs when user_id
// is given and the policy allows it.
func (h *TimeLogHandler) List(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if workerID := uint(ctx.QueryInt("user_id")); workerID != 0 && workerID != actorID {
		entries, err := h.svc.ListForWorker(actorID, workerID)
		if err != nil {
			return respondServiceError(ctx, err)
		}
		return utils.ResponseSuccess(ctx, fiber.StatusOK, entries)
	}

	from, err := parseTimeQuery(ctx, "from")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid from timestamp")
	}
	to, err := parseTimeQuery(ctx, "to")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid to timestamp")
	}

	entries, err := h.svc.ListMine(actorID, from, to)
	if err != nil {
		return respondServiceError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, entries)
}

func (h *TimeLogHandler) ListPending(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	entries, err := h.svc.ListPending(actorID)
	if err != nil {
		return respondServiceError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, entries)
}

func (h *TimeLogHandler) Update(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	timeLogID, err := parseID(ctx, "timeLogID")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid time log id")
	}

	var requestBody dto.UpdateTimeLogRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	entry, err := h.svc.Update(actorID, timeLogID, requestBody)
	if err != nil {
		return respondServiceError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, entry)
}

func (h *TimeLogHandler) Approve(ctx *fiber.Ctx) error {
	actorID, ok := ctx.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	timeLogID, err := parseID(ctx, "timeLogID")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid time log id")
	}

	entry, err := h.svc.Approve(actorID, timeLogID)
	if err != nil {
		return respondServiceError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, entry)
}

func parseID(ctx *fiber.Ctx, name string) (uint, error) {
	raw := ctx.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func parseTimeQuery(ctx *fiber.Ctx, name string) (*time.Time, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// respondServiceError maps service sentinels to HTTP statuses. Policy
// denials stay 403, never 404, so the handler does not leak which records
// exist.
func respondServiceError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return utils.ResponseError(ctx, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, "not found")
	case helper.IsForeignKeyViolation(err):
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "referenced record does not exist")
	default:
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
}
