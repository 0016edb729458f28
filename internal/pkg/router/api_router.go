package router

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/SurplusYard/SurplusYard/app/controllers"
	"github.com/SurplusYard/SurplusYard/internal/pkg/env"
	"github.com/SurplusYard/SurplusYard/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Storage: limiterStorage(),
	}))

	// Public browse
	api.Get("/listings", controllers.HandleBrowseListings)
	api.Get("/listings/:id", controllers.HandleGetListing)
	api.Get("/images/resize", controllers.HandleResizeImage)

	// Seller
	api.Post("/payments/checkout", controllers.HandleCreateCheckout)
	api.Get("/account/listings", controllers.HandleSellerListings)
	api.Post("/listings/:id/sold", controllers.HandleMarkListingSold)
	api.Delete("/listings/:id", controllers.HandleDeleteListing)
	api.Post("/uploads/presign", controllers.HandlePresignUpload)

	// Reports
	api.Post("/reports", controllers.HandleCreateReport)

	// Moderation
	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.Get("/listings", controllers.HandleAdminListListings)
	admin.Post("/listings", controllers.HandleAdminCreateListing)
	admin.Delete("/listings/:id", controllers.HandleAdminDeleteListing)
	admin.Get("/reports", controllers.HandleAdminListReports)
	admin.Post("/reports/:id/resolve", controllers.HandleAdminResolveReport)
}

// limiterStorage backs the rate limiter with Redis so limits hold across
// instances. Falls back to in-memory storage when Redis is not configured.
func limiterStorage() fiber.Storage {
	host := env.GetEnv("CACHE_HOST", "")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host: host,
		Port: port,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
