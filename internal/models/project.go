package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
)

type Project struct {
	ID        uint64        `gorm:"primarykey" json:"id"`
	Name      string        `gorm:"type:varchar(255);not null" json:"name"`
	Status    ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	ClientID  uint64        `gorm:"not null" json:"client_id"`
	StartDate *time.Time    `json:"start_date"`
	DueDate   *time.Time    `json:"due_date"`
	// Progress is the manually maintained fallback used when a project has
	// neither action items nor milestones to derive a percentage from.
	Progress  int            `gorm:"not null;default:0" json:"progress"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client      User         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ActionItems []ActionItem `gorm:"foreignKey:ProjectID" json:"action_items,omitempty"`
	Milestones  []Milestone  `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
}
