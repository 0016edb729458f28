package payments

import (
	"time"

	"github.com/SurplusYard/SurplusYard/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payments service.
type Repository interface {
	CreatePendingListing(pending *models.PendingListing) error
	GetPendingListing(id string) (*models.PendingListing, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint) error
	RecordWebhookError(id uint, processingError string) error
	PublishPending(pending *models.PendingListing, imageURLs []string) (*models.Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreatePendingListing(pending *models.PendingListing) error {
	return r.db.Create(pending).Error
}

func (r *gormRepository) GetPendingListing(id string) (*models.PendingListing, error) {
	var pending models.PendingListing
	if err := r.db.Where("id = ?", id).First(&pending).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("fingerprint = ?", event.Fingerprint).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed":        true,
		"processed_at":     &now,
		"processing_error": "",
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) RecordWebhookError(id uint, processingError string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("processing_error", processingError).Error
}

// PublishPending performs the irreversible publish step as one transaction:
// the conditional status flip serializes racing confirmation callers on the
// pending row, and the unique index on listings.pending_listing_id backs it
// up. RowsAffected == 0 on the flip means someone else already published.
func (r *gormRepository) PublishPending(pending *models.PendingListing, imageURLs []string) (*models.Listing, error) {
	pendingID := pending.ID
	listing := &models.Listing{
		PendingListingID: &pendingID,
		SellerID:         pending.SellerID,
		Title:            pending.Title,
		Description:      pending.Description,
		Category:         pending.Category,
		PricePence:       pending.PricePence,
		Lat:              pending.Lat,
		Lng:              pending.Lng,
		ContactName:      pending.ContactName,
		ContactPhone:     pending.ContactPhone,
		PickupArea:       pending.PickupArea,
	}
	for i, url := range imageURLs {
		listing.Images = append(listing.Images, models.ListingImage{URL: url, Position: i})
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PendingListing{}).
			Where("id = ? AND status = ?", pendingID, models.PendingStatusPending).
			Update("status", models.PendingStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPublished
		}
		return tx.Create(listing).Error
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}
