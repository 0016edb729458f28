package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SurplusYard/SurplusYard/app/models"
	"github.com/SurplusYard/SurplusYard/app/repository"
)

// ReportController accepts buyer complaints about published listings.
type ReportController struct {
	reports  repository.ReportRepository
	listings repository.ListingRepository
}

var reportController *ReportController

// InitializeReportController wires the default controller to the repository
// factory.
func InitializeReportController(factory *repository.Factory) {
	reportController = NewReportController(factory.GetReportRepository(), factory.GetListingRepository())
}

// NewReportController creates a report controller with injected repositories.
func NewReportController(reports repository.ReportRepository, listings repository.ListingRepository) *ReportController {
	return &ReportController{reports: reports, listings: listings}
}

func HandleCreateReport(c *fiber.Ctx) error { return reportController.HandleCreateReport(c) }

// HandleCreateReport files a report against a listing. POST /api/reports
func (rc *ReportController) HandleCreateReport(c *fiber.Ctx) error {
	var in struct {
		ListingID uint   `json:"listingId"`
		Reason    string `json:"reason"`
		Details   string `json:"details"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}
	if in.ListingID == 0 || strings.TrimSpace(in.Reason) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_fields"})
	}

	if _, err := rc.listings.GetByID(in.ListingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_unavailable"})
	}

	report := &models.Report{
		ListingID:  in.ListingID,
		ReporterID: requestUserID(c),
		Reason:     strings.TrimSpace(in.Reason),
		Details:    strings.TrimSpace(in.Details),
		Status:     models.ReportStatusOpen,
	}
	if err := rc.reports.Create(report); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
