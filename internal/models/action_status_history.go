package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ActionStatusHistory is the append-only audit ledger for action item
// transitions. Rows are written exactly once per successful transition and
// are never updated or deleted, so the model intentionally carries no
// UpdatedAt or DeletedAt column.
type ActionStatusHistory struct {
	ID               uint64            `gorm:"primarykey" json:"id"`
	ActionItemID     uint64            `gorm:"not null;index" json:"action_item_id"`
	PreviousStatus   *ActionItemStatus `gorm:"type:varchar(20)" json:"previous_status"`
	NewStatus        ActionItemStatus  `gorm:"type:varchar(20);not null" json:"new_status"`
	Summary          string            `gorm:"type:text;not null" json:"summary"`
	OutcomeTag       string            `gorm:"type:varchar(100)" json:"outcome_tag,omitempty"`
	NotifiedUserIDs  datatypes.JSON    `json:"notified_user_ids"`
	FollowUpActionID *uint64           `json:"follow_up_action_id"`
	CreatedBy        uint64            `gorm:"not null" json:"created_by"`
	CreatedAt        time.Time         `json:"created_at"`

	// Relations
	ActionItem     ActionItem  `gorm:"foreignKey:ActionItemID" json:"-"`
	FollowUpAction *ActionItem `gorm:"foreignKey:FollowUpActionID" json:"follow_up_action,omitempty"`
}

// NotifiedIDs decodes the notified-user JSON column.
func (h *ActionStatusHistory) NotifiedIDs() []uint64 {
	if len(h.NotifiedUserIDs) == 0 {
		return nil
	}
	var ids []uint64
	if err := json.Unmarshal(h.NotifiedUserIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeNotifiedIDs sets the notified-user JSON column from a slice.
func (h *ActionStatusHistory) EncodeNotifiedIDs(ids []uint64) error {
	if ids == nil {
		ids = []uint64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	h.NotifiedUserIDs = datatypes.JSON(raw)
	return nil
}
