package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SurplusYard/SurplusYard/app/models"
	"github.com/SurplusYard/SurplusYard/app/repository"
	"github.com/SurplusYard/SurplusYard/internal/pkg/cache"
	"github.com/SurplusYard/SurplusYard/internal/pkg/geo"
)

// ListingController serves public browse/detail plus owner listing
// management. Publishing itself happens only through the payment pipeline.
type ListingController struct {
	repo     repository.ListingRepository
	center   geo.Center
	maxMiles float64
	cacheTTL time.Duration
}

var listingController *ListingController

// InitializeListingController builds the default controller from the global
// repository factory and environment configuration.
func InitializeListingController(factory *repository.Factory) {
	listingController = NewListingController(
		factory.GetListingRepository(),
		geo.CenterFromEnv(),
		geo.MaxDistanceMilesFromEnv(),
		30*time.Second,
	)
}

// NewListingController creates a listing controller with injected
// collaborators. A zero cacheTTL disables browse caching.
func NewListingController(repo repository.ListingRepository, center geo.Center, maxMiles float64, cacheTTL time.Duration) *ListingController {
	return &ListingController{repo: repo, center: center, maxMiles: maxMiles, cacheTTL: cacheTTL}
}

func HandleBrowseListings(c *fiber.Ctx) error { return listingController.HandleBrowseListings(c) }

func HandleGetListing(c *fiber.Ctx) error { return listingController.HandleGetListing(c) }

func HandleMarkListingSold(c *fiber.Ctx) error { return listingController.HandleMarkListingSold(c) }

func HandleDeleteListing(c *fiber.Ctx) error { return listingController.HandleDeleteListing(c) }

func HandleSellerListings(c *fiber.Ctx) error { return listingController.HandleSellerListings(c) }

// HandleBrowseListings returns unsold listings within the browse radius of
// the town center, optionally filtered by category. GET /api/listings
func (lc *ListingController) HandleBrowseListings(c *fiber.Ctx) error {
	category := c.Query("category")
	if category != "" && !models.ValidCategory(category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_category"})
	}

	cacheKey := "listings:browse:" + category
	if lc.cacheTTL > 0 {
		if cached, err := cache.Get(cacheKey); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	listings, err := lc.repo.GetUnsold(category)
	if err != nil {
		log.Printf("browse listings failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listings_unavailable"})
	}

	nearby := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if lc.center.MilesFrom(l.Lat, l.Lng) <= lc.maxMiles {
			nearby = append(nearby, l)
		}
	}

	if lc.cacheTTL > 0 {
		if body, err := json.Marshal(nearby); err == nil {
			if err := cache.Set(cacheKey, string(body), lc.cacheTTL); err != nil {
				log.Printf("browse cache write failed: %v", err)
			}
		}
	}
	return c.Status(fiber.StatusOK).JSON(nearby)
}

// HandleGetListing returns one listing with its images. GET /api/listings/:id
func (lc *ListingController) HandleGetListing(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	listing, err := lc.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(listing)
}

// HandleSellerListings returns the requesting seller's own listings.
// GET /api/account/listings
func (lc *ListingController) HandleSellerListings(c *fiber.Ctx) error {
	sellerID := requestUserID(c)
	if sellerID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	listings, err := lc.repo.GetBySellerID(sellerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listings_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(listings)
}

// HandleMarkListingSold flags the caller's listing as sold.
// POST /api/listings/:id/sold
func (lc *ListingController) HandleMarkListingSold(c *fiber.Ctx) error {
	listing, status := lc.loadOwnedListing(c)
	if listing == nil {
		return status
	}

	if err := lc.repo.MarkSold(listing.ID, time.Now()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "update_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleDeleteListing removes the caller's listing. DELETE /api/listings/:id
func (lc *ListingController) HandleDeleteListing(c *fiber.Ctx) error {
	listing, status := lc.loadOwnedListing(c)
	if listing == nil {
		return status
	}

	if err := lc.repo.Delete(listing.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delete_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// loadOwnedListing resolves the :id parameter to a listing owned by the
// requesting user. On failure the listing is nil and the error response has
// already been written.
func (lc *ListingController) loadOwnedListing(c *fiber.Ctx) (*models.Listing, error) {
	sellerID := requestUserID(c)
	if sellerID == 0 {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	listing, err := lc.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing_not_found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_unavailable"})
	}
	if listing.SellerID != sellerID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	return listing, nil
}

// requestUserID reads the authenticated user id set by the upstream identity
// layer. Session wiring lives outside this service.
func requestUserID(c *fiber.Ctx) uint {
	id, err := strconv.ParseUint(c.Get("X-User-ID"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
