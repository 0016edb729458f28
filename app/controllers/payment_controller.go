package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SurplusYard/SurplusYard/internal/pkg/database"
	"github.com/SurplusYard/SurplusYard/internal/pkg/payments"
)

// PaymentController wires the payment-confirmation pipeline into HTTP. Both
// confirmation entry points run as independent request handlers with no
// shared in-process lock; the store's conditional status flip is the only
// coordination between them.
type PaymentController struct {
	svc *payments.Service
}

var paymentController *PaymentController

// InitializePaymentController builds the default controller from the global
// DB handle and environment configuration.
func InitializePaymentController() {
	paymentController = NewPaymentController(payments.NewServiceFromDB(
		database.GetDB(),
		payments.NewSquareClientFromEnv(),
		payments.ConfigFromEnv(),
	))
}

// NewPaymentController creates a payment controller with an injected service.
func NewPaymentController(svc *payments.Service) *PaymentController {
	return &PaymentController{svc: svc}
}

func HandleCreateCheckout(c *fiber.Ctx) error { return paymentController.HandleCreateCheckout(c) }

func HandlePaymentComplete(c *fiber.Ctx) error { return paymentController.HandlePaymentComplete(c) }

func HandleSquareWebhook(c *fiber.Ctx) error { return paymentController.HandleSquareWebhook(c) }

// HandleCreateCheckout stages a listing submission and returns the hosted
// checkout URL. POST /api/payments/checkout
func (pc *PaymentController) HandleCreateCheckout(c *fiber.Ctx) error {
	var in payments.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pending, checkoutURL, err := pc.svc.CreatePendingCheckout(ctx, in)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSubmission) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_submission", "message": err.Error()})
		}
		log.Printf("checkout creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"checkoutUrl": checkoutURL,
		"pendingId":   pending.ID,
	})
}

// HandlePaymentComplete is the redirect target after hosted checkout. It
// publishes best-effort and always moves the browser onward; the webhook is
// the authoritative fallback when this path fails. GET /payments/complete
func (pc *PaymentController) HandlePaymentComplete(c *fiber.Ctx) error {
	pendingID := strings.TrimSpace(c.Query("pendingId"))
	if pendingID == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing pendingId")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := pc.svc.Publish(ctx, pendingID)
	switch {
	case err == nil, errors.Is(err, payments.ErrAlreadyPublished):
		// Published now, or the webhook beat us to it. Either way: done.
	case errors.Is(err, payments.ErrPendingNotFound):
		return c.Status(fiber.StatusNotFound).SendString("Pending listing not found")
	default:
		// Never strand the payer on an error page. The pending record stays
		// unconfirmed until the webhook resolves it.
		log.Printf("redirect-path publish failed for %s: %v", pendingID, err)
	}

	return c.Redirect("/account", fiber.StatusSeeOther)
}

// HandleSquareWebhook is the asynchronous confirmation entry point. Order
// matters: raw body -> signature check -> parse -> ledger insert -> publish
// -> mark processed. Deliveries arrive at least once, in any order, possibly
// concurrently with the redirect path. POST /webhooks/square
func (pc *PaymentController) HandleSquareWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := firstHeaderValue(c, "X-Square-Signature", "X-Square-Hmacsha256-Signature")

	if !pc.svc.VerifySignature(rawBody, signature) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := pc.svc.RecordWebhookEvent(ctx, payments.WebhookEventInput{
		Source:          payments.SourceSquare,
		ProviderEventID: payments.EventID(payload),
		RawPayload:      rawBody,
	})
	if err != nil {
		// A failed ledger write is transient; a 5xx makes the provider
		// redeliver instead of losing the event.
		log.Printf("webhook ledger write failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.Processed {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	referenceID := payments.ExtractReferenceID(payload)
	if referenceID == "" {
		// Nothing to correlate; the identical bytes can never resolve later.
		_ = pc.svc.MarkWebhookProcessed(ctx, stored.ID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	listing, err := pc.svc.Publish(ctx, referenceID)
	switch {
	case err == nil:
		if markErr := pc.svc.MarkWebhookProcessed(ctx, stored.ID); markErr != nil {
			log.Printf("failed to mark webhook %d processed: %v", stored.ID, markErr)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "listingId": listing.ID})
	case errors.Is(err, payments.ErrAlreadyPublished):
		if markErr := pc.svc.MarkWebhookProcessed(ctx, stored.ID); markErr != nil {
			log.Printf("failed to mark webhook %d processed: %v", stored.ID, markErr)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	case errors.Is(err, payments.ErrPendingNotFound):
		// Acknowledge so the provider stops retrying a token that will never
		// resolve; the row stays unprocessed with the reason recorded.
		_ = pc.svc.RecordWebhookFailure(ctx, stored.ID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	default:
		// Swallow after logging: a poison payload must not trigger infinite
		// provider retries. The unprocessed ledger row is the recovery hook.
		log.Printf("webhook publish failed for %s: %v", referenceID, err)
		_ = pc.svc.RecordWebhookFailure(ctx, stored.ID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	}
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
