package repository

import (
	"time"

	"github.com/SurplusYard/SurplusYard/app/models"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByStatus(status string, offset, limit int) ([]models.Report, error) {
	q := r.db.Order("created_at DESC").Offset(offset).Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reports []models.Report
	err := q.Find(&reports).Error
	return reports, err
}

func (r *reportRepository) Resolve(id uint, resolvedAt time.Time) error {
	return r.db.Model(&models.Report{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      models.ReportStatusResolved,
		"resolved_at": &resolvedAt,
	}).Error
}
