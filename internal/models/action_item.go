package models

import (
	"time"

	"gorm.io/gorm"
)

type ActionItemStatus string

const (
	ActionStatusPending    ActionItemStatus = "PENDING"
	ActionStatusInProgress ActionItemStatus = "IN_PROGRESS"
	ActionStatusCompleted  ActionItemStatus = "COMPLETED"
	ActionStatusOverdue    ActionItemStatus = "OVERDUE"
)

// IsValid reports whether the status is a member of the status enum.
func (s ActionItemStatus) IsValid() bool {
	switch s {
	case ActionStatusPending, ActionStatusInProgress, ActionStatusCompleted, ActionStatusOverdue:
		return true
	}
	return false
}

type ActionPriority string

const (
	PriorityLow    ActionPriority = "LOW"
	PriorityMedium ActionPriority = "MEDIUM"
	PriorityHigh   ActionPriority = "HIGH"
	PriorityUrgent ActionPriority = "URGENT"
)

type SecureFieldType string

const (
	SecureFieldShortText SecureFieldType = "SHORT_TEXT"
	SecureFieldLongText  SecureFieldType = "LONG_TEXT"
	SecureFieldSecret    SecureFieldType = "SECRET"
)

type RetentionPolicy string

const (
	RetentionUntilDeleted     RetentionPolicy = "UNTIL_DELETED"
	RetentionExpireAfterView  RetentionPolicy = "EXPIRE_AFTER_VIEW"
	RetentionExpireAfterHours RetentionPolicy = "EXPIRE_AFTER_HOURS"
)

type ActionItem struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Status      ActionItemStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Priority    ActionPriority   `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	// CompletedAt is derived by the transition engine: set when the item
	// enters COMPLETED, cleared on any other status.
	CompletedAt *time.Time `json:"completed_at"`
	ProjectID   *uint64    `gorm:"index" json:"project_id"`
	AssignedTo  *uint64    `gorm:"index" json:"assigned_to"`
	CreatedBy   uint64     `gorm:"not null" json:"created_by"`

	VisibleToClient   bool    `gorm:"not null;default:false" json:"visible_to_client"`
	ClientCanComplete bool    `gorm:"not null;default:false" json:"client_can_complete"`
	ReviewRequired    bool    `gorm:"not null;default:false" json:"review_required"`
	ReviewAssigneeID  *uint64 `json:"review_assignee_id"`

	RequiresSecureResponse bool            `gorm:"not null;default:false" json:"requires_secure_response"`
	SecurePrompt           string          `gorm:"type:text" json:"secure_prompt,omitempty"`
	SecureFieldType        SecureFieldType `gorm:"type:varchar(20);default:'SHORT_TEXT'" json:"secure_field_type,omitempty"`
	SecureRetentionPolicy  RetentionPolicy `gorm:"type:varchar(30);default:'UNTIL_DELETED'" json:"secure_retention_policy,omitempty"`
	SecureExpireAfterHours *int            `json:"secure_expire_after_hours,omitempty"`
	SecureViewedAt         *time.Time      `json:"secure_viewed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project        *Project              `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee       *User                 `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	History        []ActionStatusHistory `gorm:"foreignKey:ActionItemID" json:"history,omitempty"`
	SecureResponse *ActionSecureResponse `gorm:"foreignKey:ActionItemID" json:"-"`
}
