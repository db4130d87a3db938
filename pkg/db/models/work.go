package models

import (
	"time"

	"github.com/google/uuid"
)

// Work is a licensable audio work in the catalog. LicenseCount and
// TotalRevenueCents are updated only with atomic increments, never
// read-modify-write, so concurrent purchases stay correct.
type Work struct {
	// ids are assigned in Go; a server-side default would keep this model
	// from migrating onto the sqlite test driver
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title             string    `gorm:"column:title;not null"`
	ArtistName        string    `gorm:"column:artist_name;not null"`
	OwnerRecipientID  uuid.UUID `gorm:"column:owner_recipient_id;type:uuid;not null"`
	LicenseCount      int64     `gorm:"column:license_count;not null;default:0"`
	TotalRevenueCents int64     `gorm:"column:total_revenue_cents;not null;default:0"`
	PublishedAt       *time.Time `gorm:"column:published_at"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
