package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CategoryBricks      = "bricks"
	CategoryTimber      = "timber"
	CategoryRoofing     = "roofing"
	CategoryPlumbing    = "plumbing"
	CategoryElectrical  = "electrical"
	CategoryFlooring    = "flooring"
	CategoryLandscaping = "landscaping"
	CategoryFixtures    = "fixtures"
	CategoryOther       = "other"
)

// Listing is the published, publicly visible artifact. PendingListingID is
// unique: at most one listing can ever be minted from a staged submission,
// which is the database-level backstop for racing confirmation callers.
// Admin-created listings have no pending counterpart, hence the pointer.
type Listing struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PendingListingID *string        `gorm:"type:varchar(36);uniqueIndex:ux_listings_pending_listing_id" json:"pending_listing_id,omitempty"`
	SellerID         uint           `gorm:"not null;index" json:"seller_id"`
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Category         string         `gorm:"type:varchar(50);index" json:"category"`
	PricePence       int            `gorm:"not null" json:"price_pence"`
	Lat              float64        `gorm:"not null" json:"lat"`
	Lng              float64        `gorm:"not null" json:"lng"`
	ContactName      string         `gorm:"type:varchar(150)" json:"contact_name"`
	ContactPhone     string         `gorm:"type:varchar(30)" json:"contact_phone"`
	PickupArea       string         `gorm:"type:varchar(200)" json:"pickup_area"`
	Sold             bool           `gorm:"default:false;index" json:"sold"`
	SoldAt           *time.Time     `gorm:"type:timestamp;default:null" json:"sold_at,omitempty"`
	Images           []ListingImage `gorm:"foreignKey:ListingID" json:"images"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidCategory reports whether c is one of the supported listing categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryBricks, CategoryTimber, CategoryRoofing, CategoryPlumbing,
		CategoryElectrical, CategoryFlooring, CategoryLandscaping,
		CategoryFixtures, CategoryOther:
		return true
	default:
		return false
	}
}
