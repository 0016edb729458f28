package payments

import "errors"

// SourceSquare tags ledger rows created from Square webhook deliveries.
const SourceSquare = "square"

var (
	// ErrInvalidSubmission means the seller's input failed validation and
	// nothing was staged.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrPendingNotFound means the correlation token matched no staged
	// submission. Reported, not fatal: webhook callers acknowledge it.
	ErrPendingNotFound = errors.New("pending listing not found")

	// ErrAlreadyPublished means another confirmation caller won the race.
	// Treated as success-already-happened by both entry points.
	ErrAlreadyPublished = errors.New("pending listing already published")
)

// CheckoutInput is a seller's listing submission ahead of payment.
type CheckoutInput struct {
	SellerID     uint     `json:"sellerId" validate:"required"`
	Title        string   `json:"title" validate:"required,min=3,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Category     string   `json:"category" validate:"required,max=50"`
	PricePence   int      `json:"pricePence" validate:"required,min=1"`
	Lat          float64  `json:"lat" validate:"required,latitude"`
	Lng          float64  `json:"lng" validate:"required,longitude"`
	Images       []string `json:"images" validate:"max=12,dive,url"`
	ContactName  string   `json:"contactName" validate:"max=150"`
	ContactPhone string   `json:"contactPhone" validate:"max=30"`
	PickupArea   string   `json:"pickupArea" validate:"max=200"`
}

// WebhookEventInput is the normalized input for ledger persistence.
type WebhookEventInput struct {
	Source          string
	ProviderEventID string
	RawPayload      []byte
}
