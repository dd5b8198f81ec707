package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the append-only activity trail for portal entities.
// Metadata never contains secure-response payloads; vault operations are
// recorded by action kind only.
type ActivityLog struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   uint64         `gorm:"not null;index" json:"entity_id"`
	Action     string         `gorm:"type:varchar(100);not null" json:"action"`
	Metadata   datatypes.JSON `json:"metadata"`
	UserID     uint64         `gorm:"not null" json:"user_id"`
	CreatedAt  time.Time      `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
