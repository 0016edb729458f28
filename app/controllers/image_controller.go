package controllers

import (
	"bytes"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
)

const (
	resizeDefaultWidth = 800
	resizeMinWidth     = 16
	resizeMaxWidth     = 1600
	resizeMaxBodyBytes = 20 << 20
)

var resizeHTTPClient = &http.Client{Timeout: 10 * time.Second}

// HandleResizeImage fetches a remote listing image and returns a resized
// JPEG. Keeps thumbnails cheap for browse pages without storing variants.
// GET /api/images/resize?url=&w=
func HandleResizeImage(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	src, err := url.Parse(rawURL)
	if err != nil || (src.Scheme != "http" && src.Scheme != "https") || src.Host == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_url"})
	}

	width := c.QueryInt("w", resizeDefaultWidth)
	if width < resizeMinWidth {
		width = resizeMinWidth
	}
	if width > resizeMaxWidth {
		width = resizeMaxWidth
	}

	resp, err := resizeHTTPClient.Get(src.String())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "fetch_failed"})
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "fetch_failed"})
	}

	img, err := imaging.Decode(io.LimitReader(resp.Body, resizeMaxBodyBytes), imaging.AutoOrientation(true))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "not_an_image"})
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "encode_failed"})
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(buf.Bytes())
}
