package models

import "time"

const (
	PendingStatusPending   = "pending"
	PendingStatusCompleted = "completed"
)

// PendingListing is the staged form of a listing while the seller's payment
// is outstanding. Its ID doubles as the checkout reference id, so provider
// confirmations can be traced back to the originating submission. Status only
// ever moves pending -> completed; rows are never deleted by the payment flow.
type PendingListing struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SellerID     uint      `gorm:"not null;index" json:"seller_id"`
	Title        string    `gorm:"type:varchar(200);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"type:varchar(50);index" json:"category"`
	PricePence   int       `gorm:"not null" json:"price_pence"`
	Lat          float64   `gorm:"not null" json:"lat"`
	Lng          float64   `gorm:"not null" json:"lng"`
	ImagesJSON   string    `gorm:"type:text" json:"-"`
	ContactName  string    `gorm:"type:varchar(150)" json:"contact_name"`
	ContactPhone string    `gorm:"type:varchar(30)" json:"contact_phone"`
	PickupArea   string    `gorm:"type:varchar(200)" json:"pickup_area"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PendingListing) IsCompleted() bool {
	return p.Status == PendingStatusCompleted
}
