package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SurplusYard/SurplusYard/app/models"
	"github.com/SurplusYard/SurplusYard/internal/pkg/env"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Config carries the pipeline configuration, resolved once at startup and
// passed in explicitly so tests can run with fabricated secrets.
type Config struct {
	// WebhookSecret is the shared HMAC key for webhook signature checks.
	WebhookSecret string
	// ListingFeePence is the flat fee charged per listing, in pence.
	ListingFeePence int
	// CompleteURL is the absolute redirect target handed to the checkout
	// session; the pending id is appended as a query parameter.
	CompleteURL string
}

// ConfigFromEnv resolves the pipeline configuration from the environment.
func ConfigFromEnv() Config {
	fee, err := strconv.Atoi(env.GetEnv("LISTING_FEE_PENCE", "100"))
	if err != nil || fee <= 0 {
		fee = 100
	}
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	return Config{
		WebhookSecret:   strings.TrimSpace(env.GetEnv("SQUARE_WEBHOOK_SIGNATURE_KEY", "")),
		ListingFeePence: fee,
		CompleteURL:     base + "/payments/complete",
	}
}

// Service implements the payment-confirmation pipeline: staging a listing
// behind a checkout session, recording webhook deliveries idempotently and
// publishing a confirmed pending listing exactly once.
type Service struct {
	repo     Repository
	checkout CheckoutClient
	cfg      Config
	validate *validator.Validate
}

// NewService creates a payments service from injected collaborators.
func NewService(repo Repository, checkout CheckoutClient, cfg Config) *Service {
	return &Service{repo: repo, checkout: checkout, cfg: cfg, validate: validator.New()}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, checkout CheckoutClient, cfg Config) *Service {
	return NewService(NewRepository(db), checkout, cfg)
}

// VerifySignature checks a webhook delivery against the configured secret.
func (s *Service) VerifySignature(raw []byte, signatureHeader string) bool {
	return VerifyWebhookSignature(raw, signatureHeader, s.cfg.WebhookSecret)
}

// CreatePendingCheckout stages the submission and opens a hosted checkout
// session carrying the pending id as reference/idempotency key. The checkout
// call sits on the seller's synchronous path and fails fast rather than hang.
func (s *Service) CreatePendingCheckout(ctx context.Context, in CheckoutInput) (*models.PendingListing, string, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	if !models.ValidCategory(in.Category) {
		return nil, "", fmt.Errorf("%w: unknown category %q", ErrInvalidSubmission, in.Category)
	}

	imagesJSON, err := json.Marshal(in.Images)
	if err != nil {
		return nil, "", fmt.Errorf("encode image list: %w", err)
	}

	pending := &models.PendingListing{
		ID:           uuid.NewString(),
		SellerID:     in.SellerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		PricePence:   in.PricePence,
		Lat:          in.Lat,
		Lng:          in.Lng,
		ImagesJSON:   string(imagesJSON),
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		PickupArea:   strings.TrimSpace(in.PickupArea),
		Status:       models.PendingStatusPending,
	}
	if err := s.repo.CreatePendingListing(pending); err != nil {
		return nil, "", fmt.Errorf("stage pending listing: %w", err)
	}

	redirectURL := s.cfg.CompleteURL + "?pendingId=" + pending.ID
	checkoutURL, err := s.checkout.CreatePaymentLink(ctx, s.cfg.ListingFeePence, redirectURL, pending.ID)
	if err != nil {
		// The pending row stays; cleanup of abandoned submissions is an
		// external concern.
		return nil, "", fmt.Errorf("create checkout session: %w", err)
	}
	return pending, checkoutURL, nil
}

// RecordWebhookEvent persists a delivery keyed by content fingerprint. The
// insert happens before any publish attempt so a crash mid-publish leaves a
// recoverable unprocessed row instead of silently losing the event. Returns
// whether the row was newly created plus the stored row.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	source := strings.ToLower(strings.TrimSpace(in.Source))
	if source == "" {
		return false, nil, errors.New("source is required")
	}

	event := &models.WebhookEvent{
		Source:          source,
		ProviderEventID: strings.TrimSpace(in.ProviderEventID),
		Fingerprint:     Fingerprint(in.RawPayload),
		PayloadJSON:     string(in.RawPayload),
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed flips the ledger row to processed. Called only after
// the publish actually happened (or was found to have already happened).
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	return s.repo.MarkWebhookProcessed(webhookEventID)
}

// RecordWebhookFailure stores a processing error on the ledger row without
// flipping it to processed, so a redelivery can retry.
func (s *Service) RecordWebhookFailure(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	msg := ""
	if processingErr != nil {
		msg = processingErr.Error()
	}
	return s.repo.RecordWebhookError(webhookEventID, msg)
}

// Publish converts a staged submission into a public listing exactly once.
// Returns ErrPendingNotFound for an unknown id and ErrAlreadyPublished when
// another caller got there first; both are no-ops on stored state. A
// malformed staged image list aborts before any write so the record stays
// pending and a corrected retry remains possible.
func (s *Service) Publish(ctx context.Context, pendingID string) (*models.Listing, error) {
	_ = ctx
	id := strings.TrimSpace(pendingID)
	if id == "" {
		return nil, ErrPendingNotFound
	}

	pending, err := s.repo.GetPendingListing(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("load pending listing %s: %w", id, err)
	}
	if pending.IsCompleted() {
		return nil, ErrAlreadyPublished
	}

	var imageURLs []string
	if raw := strings.TrimSpace(pending.ImagesJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &imageURLs); err != nil {
			return nil, fmt.Errorf("staged image list for %s: %w", id, err)
		}
	}

	listing, err := s.repo.PublishPending(pending, imageURLs)
	if err != nil {
		if errors.Is(err, ErrAlreadyPublished) {
			return nil, ErrAlreadyPublished
		}
		return nil, fmt.Errorf("publish pending listing %s: %w", id, err)
	}
	return listing, nil
}
