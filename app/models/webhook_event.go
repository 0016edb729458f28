package models

import "time"

// WebhookEvent stores provider webhook payloads with deduplication metadata
// for idempotent processing. The fingerprint is a SHA-256 over the exact raw
// body bytes, so redelivered notifications collapse onto one row. Processed
// is flipped only after the correlated pending listing has actually been
// published; a crash mid-publish leaves a recoverable unprocessed row.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Source          string     `gorm:"type:varchar(20);not null;index" json:"source"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:''" json:"provider_event_id"`
	Fingerprint     string     `gorm:"type:varchar(64);not null;uniqueIndex:ux_webhook_events_fingerprint" json:"fingerprint"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
