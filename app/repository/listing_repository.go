package repository

import (
	"time"

	"github.com/SurplusYard/SurplusYard/app/models"
	"gorm.io/gorm"
)

// listingRepository implements the ListingRepository interface
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create creates a new listing in the database
func (r *listingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetByID retrieves a listing with its images by ID
func (r *listingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetUnsold retrieves unsold listings, optionally restricted to a category.
// Distance filtering happens in the caller; the candidate set around one town
// is small enough that the haversine cut does not belong in SQL.
func (r *listingRepository) GetUnsold(category string) ([]models.Listing, error) {
	q := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("sold = ?", false)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var listings []models.Listing
	err := q.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// GetBySellerID retrieves all listings belonging to a seller
func (r *listingRepository) GetBySellerID(sellerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Preload("Images").Where("seller_id = ?", sellerID).
		Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// MarkSold flags a listing as sold with the given timestamp
func (r *listingRepository) MarkSold(id uint, soldAt time.Time) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sold":    true,
		"sold_at": &soldAt,
	}).Error
}

// Delete soft-deletes a listing
func (r *listingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Listing{}, id).Error
}

// List retrieves listings with pagination (admin view, sold included)
func (r *listingRepository) List(offset, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Preload("Images").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&listings).Error
	return listings, err
}

// Count returns the total number of listings
func (r *listingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Count(&count).Error
	return count, err
}
