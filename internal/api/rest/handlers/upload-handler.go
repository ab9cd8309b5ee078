package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldflow/timelog_service/internal/helper/utils"
	"github.com/fieldflow/timelog_service/internal/interfaces"
	"github.com/fieldflow/timelog_service/internal/services"
	pkgutils "github.com/fieldflow/timelog_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UploadHandler struct {
	uploader interfaces.Uploader
	svc      services.TimeLogService
}

func NewUploadHandler(uploader interfaces.Uploader, svc services.TimeLogService) *UploadHandler {
	return &UploadHandler{uploader: uploader, svc: svc}
}

func (h *UploadHandler) SetupRoutes(api fiber.Router) {
	api.Post("/timelogs/:timeLogID/photos", h.UploadPhoto)
}

// POST /api/timelogs/:timeLogID/photos
// form-data: file=<image>
func (h *UploadHandler) UploadPhoto(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok || actorID == 0 {
		return utils.ResponseError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	timeLogID, err := parseID(c, "timeLogID")
	if err != nil {
		return utils.ResponseError(c, fiber.StatusBadRequest, "invalid time log id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "file is required"})
	}

	// validate extension
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowed[ext] {
		return c.Status(400).JSON(fiber.Map{"message": "only jpg/jpeg/png/webp allowed"})
	}

	const maxSize = 5 * 1024 * 1024 // 5MB

	f, err := file.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "cannot open uploaded file"})
	}
	defer f.Close()

	b, err := pkgutils.ReadAllLimit(f, maxSize)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "file too large (max 5MB)"})
	}

	// site photos arrive rotated and oversized straight from phones
	b, err = pkgutils.NormalizeToJPG(b, 1920, 85)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid image"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	filename := fmt.Sprintf("timelog-%d-%s.jpg", timeLogID, uuid.NewString())
	url, err := h.uploader.UploadBytes(ctx, "fieldflow/timelog_photos", filename, b)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": fmt.Sprintf("upload failed: %v", err)})
	}

	entry, err := h.svc.AttachPhoto(actorID, timeLogID, url)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.ResponseSuccess(c, fiber.StatusOK, entry)
}
