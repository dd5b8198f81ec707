package models

import "time"

type Notification struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	UserID     uint64     `gorm:"not null;index" json:"user_id"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	EntityType string     `gorm:"type:varchar(50)" json:"entity_type"`
	EntityID   uint64     `json:"entity_id"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
