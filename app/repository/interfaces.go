package repository

import (
	"time"

	"github.com/SurplusYard/SurplusYard/app/models"
	"gorm.io/gorm"
)

// ListingRepository defines the interface for listing-related database operations
type ListingRepository interface {
	Create(listing *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	GetUnsold(category string) ([]models.Listing, error)
	GetBySellerID(sellerID uint) ([]models.Listing, error)
	MarkSold(id uint, soldAt time.Time) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Listing, error)
	Count() (int64, error)
}

// ReportRepository defines the interface for report-related database operations
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	ListByStatus(status string, offset, limit int) ([]models.Report, error)
	Resolve(id uint, resolvedAt time.Time) error
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Listing ListingRepository
	Report  ReportRepository
	User    UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Listing: NewListingRepository(db),
		Report:  NewReportRepository(db),
		User:    NewUserRepository(db),
	}
}
