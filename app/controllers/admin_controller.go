package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SurplusYard/SurplusYard/app/models"
	"github.com/SurplusYard/SurplusYard/app/repository"
)

const adminPageSize = 50

// AdminController serves the moderation endpoints: full listing inventory,
// direct listing creation, listing removal and report resolution.
type AdminController struct {
	listings repository.ListingRepository
	reports  repository.ReportRepository
	users    repository.UserRepository
}

var adminController *AdminController

// InitializeAdminController wires the default controller to the repository
// factory.
func InitializeAdminController(factory *repository.Factory) {
	adminController = NewAdminController(
		factory.GetListingRepository(),
		factory.GetReportRepository(),
		factory.GetUserRepository(),
	)
}

// NewAdminController creates an admin controller with injected repositories.
func NewAdminController(listings repository.ListingRepository, reports repository.ReportRepository, users repository.UserRepository) *AdminController {
	return &AdminController{listings: listings, reports: reports, users: users}
}

func HandleAdminListListings(c *fiber.Ctx) error { return adminController.HandleAdminListListings(c) }

func HandleAdminDeleteListing(c *fiber.Ctx) error {
	return adminController.HandleAdminDeleteListing(c)
}

func HandleAdminCreateListing(c *fiber.Ctx) error {
	return adminController.HandleAdminCreateListing(c)
}

func HandleAdminListReports(c *fiber.Ctx) error { return adminController.HandleAdminListReports(c) }

func HandleAdminResolveReport(c *fiber.Ctx) error {
	return adminController.HandleAdminResolveReport(c)
}

// HandleAdminListListings pages through every listing, sold included.
// GET /api/admin/listings
func (ac *AdminController) HandleAdminListListings(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	listings, err := ac.listings.List((page-1)*adminPageSize, adminPageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listings_unavailable"})
	}
	total, err := ac.listings.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listings_unavailable"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"listings": listings,
		"total":    total,
		"page":     page,
	})
}

// HandleAdminCreateListing publishes a listing directly, bypassing the paid
// pipeline. Such listings have no pending counterpart.
// POST /api/admin/listings
func (ac *AdminController) HandleAdminCreateListing(c *fiber.Ctx) error {
	var in struct {
		SellerID    uint     `json:"sellerId"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		PricePence  int      `json:"pricePence"`
		Lat         float64  `json:"lat"`
		Lng         float64  `json:"lng"`
		Images      []string `json:"images"`
		PickupArea  string   `json:"pickupArea"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}
	if in.SellerID == 0 || strings.TrimSpace(in.Title) == "" || in.PricePence <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_fields"})
	}
	if !models.ValidCategory(in.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_category"})
	}

	// The listing must belong to a real account.
	if _, err := ac.users.GetByID(in.SellerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_seller"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "seller_unavailable"})
	}

	listing := &models.Listing{
		SellerID:    in.SellerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		PricePence:  in.PricePence,
		Lat:         in.Lat,
		Lng:         in.Lng,
		PickupArea:  strings.TrimSpace(in.PickupArea),
	}
	for i, url := range in.Images {
		listing.Images = append(listing.Images, models.ListingImage{URL: url, Position: i})
	}
	if err := ac.listings.Create(listing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "create_failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// HandleAdminDeleteListing removes any listing.
// DELETE /api/admin/listings/:id
func (ac *AdminController) HandleAdminDeleteListing(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	if _, err := ac.listings.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_unavailable"})
	}
	if err := ac.listings.Delete(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delete_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleAdminListReports pages through reports, optionally by status.
// GET /api/admin/reports
func (ac *AdminController) HandleAdminListReports(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	reports, err := ac.reports.ListByStatus(c.Query("status"), (page-1)*adminPageSize, adminPageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reports_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"reports": reports, "page": page})
}

// HandleAdminResolveReport closes a report.
// POST /api/admin/reports/:id/resolve
func (ac *AdminController) HandleAdminResolveReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	if _, err := ac.reports.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_unavailable"})
	}
	if err := ac.reports.Resolve(uint(id), time.Now()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resolve_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
