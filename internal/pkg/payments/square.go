package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SurplusYard/SurplusYard/internal/pkg/env"
)

const (
	defaultSquareAPIBaseURL = "https://connect.squareup.com"
	squareAPIVersion        = "2024-05-15"
)

// CheckoutClient opens hosted checkout sessions for the listing fee.
type CheckoutClient interface {
	// CreatePaymentLink returns the hosted checkout URL for a session of
	// amountPence, configured to redirect the payer to redirectURL and
	// tagged with referenceID as the order reference and idempotency key.
	CreatePaymentLink(ctx context.Context, amountPence int, redirectURL, referenceID string) (string, error)
}

// SquareClient talks to Square's online-checkout payment links API.
type SquareClient struct {
	AccessToken string
	LocationID  string
	APIBaseURL  string

	HTTPClient *http.Client
}

// NewSquareClientFromEnv builds a client from SQUARE_* environment settings.
func NewSquareClientFromEnv() *SquareClient {
	return &SquareClient{
		AccessToken: strings.TrimSpace(env.GetEnv("SQUARE_ACCESS_TOKEN", "")),
		LocationID:  strings.TrimSpace(env.GetEnv("SQUARE_LOCATION_ID", "")),
		APIBaseURL:  strings.TrimRight(strings.TrimSpace(env.GetEnv("SQUARE_API_BASE_URL", defaultSquareAPIBaseURL)), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type squarePaymentLinkRequest struct {
	IdempotencyKey  string                `json:"idempotency_key"`
	CheckoutOptions squareCheckoutOptions `json:"checkout_options"`
	Order           squareOrder           `json:"order"`
}

type squareCheckoutOptions struct {
	RedirectURL string `json:"redirect_url"`
}

type squareOrder struct {
	LocationID  string           `json:"location_id"`
	ReferenceID string           `json:"reference_id"`
	LineItems   []squareLineItem `json:"line_items"`
}

type squareLineItem struct {
	Name           string      `json:"name"`
	Quantity       string      `json:"quantity"`
	BasePriceMoney squareMoney `json:"base_price_money"`
}

type squareMoney struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

type squarePaymentLinkResponse struct {
	PaymentLink struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"payment_link"`
}

func (c *SquareClient) CreatePaymentLink(ctx context.Context, amountPence int, redirectURL, referenceID string) (string, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return "", errors.New("SQUARE_ACCESS_TOKEN is not configured")
	}
	if amountPence <= 0 {
		return "", errors.New("amount must be positive")
	}
	if strings.TrimSpace(referenceID) == "" {
		return "", errors.New("reference id is required")
	}

	body := squarePaymentLinkRequest{
		IdempotencyKey:  referenceID,
		CheckoutOptions: squareCheckoutOptions{RedirectURL: redirectURL},
		Order: squareOrder{
			LocationID:  c.LocationID,
			ReferenceID: referenceID,
			LineItems: []squareLineItem{
				{
					Name:           "Listing fee",
					Quantity:       "1",
					BasePriceMoney: squareMoney{Amount: amountPence, Currency: "GBP"},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode payment link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.APIBaseURL+"/v2/online-checkout/payment-links", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", squareAPIVersion)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("square payment link request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read square response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("square payment link failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out squarePaymentLinkResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode square response: %w", err)
	}
	if out.PaymentLink.URL == "" {
		return "", errors.New("square response missing payment link url")
	}
	return out.PaymentLink.URL, nil
}
