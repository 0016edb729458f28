package router

import (
	"github.com/SurplusYard/SurplusYard/app/controllers"
	"github.com/SurplusYard/SurplusYard/app/repository"
	"github.com/SurplusYard/SurplusYard/internal/pkg/database"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	factory := repository.NewFactory(database.GetDB())

	// Initialize controllers before any route dispatches to them
	controllers.InitializePaymentController()
	controllers.InitializeListingController(factory)
	controllers.InitializeReportController(factory)
	controllers.InitializeAdminController(factory)
	controllers.InitializeUploadController()

	h.registerPublicRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Browser-facing redirect target after hosted checkout. Best-effort
	// publish; the webhook below is the authoritative confirmation.
	app.Get("/payments/complete", controllers.HandlePaymentComplete)

	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/square", controllers.HandleSquareWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
