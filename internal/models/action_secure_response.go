package models

import "time"

// ActionSecureResponse is the single encrypted slot attached to an action
// item. At most one live row exists per item; a resubmission replaces the
// ciphertext in place rather than versioning it.
type ActionSecureResponse struct {
	ActionItemID  uint64    `gorm:"primarykey;autoIncrement:false" json:"action_item_id"`
	EncryptedData []byte    `gorm:"type:blob;not null" json:"-"`
	SubmittedBy   uint64    `gorm:"not null" json:"submitted_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	ActionItem ActionItem `gorm:"foreignKey:ActionItemID" json:"-"`
	Submitter  User       `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
}
