package controllers

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SurplusYard/SurplusYard/internal/pkg/uploads"
)

const presignExpiry = 15 * time.Minute

// UploadController hands out presigned S3 PUT URLs for listing images so the
// bytes never pass through the app server.
type UploadController struct {
	client *uploads.Client
}

var uploadController = &UploadController{}

// InitializeUploadController builds the S3 client when uploads are
// configured; otherwise the endpoint reports uploads as disabled.
func InitializeUploadController() {
	cfg := uploads.ConfigFromEnv()
	if !cfg.IsEnabled() {
		log.Print("S3 uploads are not configured; presign endpoint disabled")
		return
	}
	client, err := uploads.NewClient(cfg)
	if err != nil {
		log.Printf("failed to initialize S3 uploads: %v", err)
		return
	}
	uploadController = &UploadController{client: client}
}

// NewUploadController creates an upload controller with an injected client.
func NewUploadController(client *uploads.Client) *UploadController {
	return &UploadController{client: client}
}

func HandlePresignUpload(c *fiber.Ctx) error { return uploadController.HandlePresignUpload(c) }

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// HandlePresignUpload returns a presigned PUT URL for one listing image.
// POST /api/uploads/presign
func (uc *UploadController) HandlePresignUpload(c *fiber.Ctx) error {
	if uc.client == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "uploads_disabled"})
	}

	sellerID := requestUserID(c)
	if sellerID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var in struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !allowedImageExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported_file_type"})
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported_content_type"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := uploads.BuildObjectKey(sellerID, in.Filename)
	uploadURL, publicURL, err := uc.client.PresignPut(ctx, key, in.ContentType, presignExpiry)
	if err != nil {
		log.Printf("presign failed for %s: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "presign_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"uploadUrl": uploadURL,
		"publicUrl": publicURL,
		"key":       key,
	})
}
