package models

import "time"

const (
	ReportStatusOpen     = "open"
	ReportStatusResolved = "resolved"
)

// Report is a buyer-submitted complaint about a published listing.
type Report struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ListingID  uint       `gorm:"not null;index" json:"listing_id"`
	ReporterID uint       `gorm:"index" json:"reporter_id"`
	Reason     string     `gorm:"type:varchar(100);not null" json:"reason"`
	Details    string     `gorm:"type:text" json:"details"`
	Status     string     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ResolvedAt *time.Time `gorm:"type:timestamp;default:null" json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
