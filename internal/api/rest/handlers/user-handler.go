package handlers

import (
	"time"

	"github.com/fieldflow/timelog_service/internal/dto"
	"github.com/fieldflow/timelog_service/internal/helper"
	"github.com/fieldflow/timelog_service/internal/helper/utils"
	"github.com/fieldflow/timelog_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	svc  services.UserService
	auth helper.Auth
}

func NewUserHandler(svc services.UserService, auth helper.Auth) *UserHandler {
	return &UserHandler{svc: svc, auth: auth}
}

func (h *UserHandler) SetupPublicRoutes(api fiber.Router) {
	user := api.Group("/user")
	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
}

func (h *UserHandler) SetupProtectedRoutes(api fiber.Router) {
	user := api.Group("/user")
	user.Get("/me", h.Me)
}

func (h *UserHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if requestBody.Email == "" || requestBody.Password == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.Register(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "User registered successfully")
}

func (h *UserHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	user, err := h.svc.Login(requestBody)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.auth.GenerateToken(int(user.ID), user.Email)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not generate token")
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"token": token,
	})
}

func (h *UserHandler) Me(ctx *fiber.Ctx) error {
	current, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.svc.GetProfile(uint(current.UserID))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.UserProfileResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		OrganisationID: user.OrganisationID,
		HourlyRate:     user.HourlyRate,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	})
}
