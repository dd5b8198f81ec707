package dto

import (
	"time"

	"github.com/clearpointhq/client-portal-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// ActionItemDTO represents an action item in API responses
type ActionItemDTO struct {
	ID                uint64                  `json:"id"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	Status            models.ActionItemStatus `json:"status"`
	Priority          models.ActionPriority   `json:"priority"`
	DueDate           *time.Time              `json:"due_date"`
	CompletedAt       *time.Time              `json:"completed_at"`
	ProjectID         *uint64                 `json:"project_id"`
	AssignedTo        *uint64                 `json:"assigned_to"`
	VisibleToClient   bool                    `json:"visible_to_client"`
	ClientCanComplete bool                    `json:"client_can_complete"`
	ReviewRequired    bool                    `json:"review_required"`
	ReviewAssigneeID  *uint64                 `json:"review_assignee_id"`

	RequiresSecureResponse bool                   `json:"requires_secure_response"`
	SecurePrompt           string                 `json:"secure_prompt,omitempty"`
	SecureFieldType        models.SecureFieldType `json:"secure_field_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignee *UserDTO          `json:"assignee,omitempty"`
	History  []HistoryEntryDTO `json:"history,omitempty"`
}

// HistoryEntryDTO represents one audit ledger row in API responses
type HistoryEntryDTO struct {
	ID               uint64                   `json:"id"`
	ActionItemID     uint64                   `json:"action_item_id"`
	PreviousStatus   *models.ActionItemStatus `json:"previous_status"`
	NewStatus        models.ActionItemStatus  `json:"new_status"`
	Summary          string                   `json:"summary"`
	OutcomeTag       string                   `json:"outcome_tag,omitempty"`
	NotifiedUserIDs  []uint64                 `json:"notified_user_ids"`
	FollowUpActionID *uint64                  `json:"follow_up_action_id"`
	CreatedBy        uint64                   `json:"created_by"`
	CreatedAt        time.Time                `json:"created_at"`
}

// TransitionResponse is the payload returned by the status endpoint
type TransitionResponse struct {
	Item     ActionItemDTO   `json:"item"`
	History  HistoryEntryDTO `json:"history"`
	FollowUp *ActionItemDTO  `json:"follow_up,omitempty"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID         uint64     `json:"id"`
	Message    string     `json:"message"`
	EntityType string     `json:"entity_type"`
	EntityID   uint64     `json:"entity_id"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

// ToActionItemDTO converts an ActionItem model to ActionItemDTO.
// Secure-response ciphertext is never part of any response shape.
func ToActionItemDTO(item models.ActionItem) ActionItemDTO {
	dto := ActionItemDTO{
		ID:                item.ID,
		Title:             item.Title,
		Description:       item.Description,
		Status:            item.Status,
		Priority:          item.Priority,
		DueDate:           item.DueDate,
		CompletedAt:       item.CompletedAt,
		ProjectID:         item.ProjectID,
		AssignedTo:        item.AssignedTo,
		VisibleToClient:   item.VisibleToClient,
		ClientCanComplete: item.ClientCanComplete,
		ReviewRequired:    item.ReviewRequired,
		ReviewAssigneeID:  item.ReviewAssigneeID,

		RequiresSecureResponse: item.RequiresSecureResponse,
		SecurePrompt:           item.SecurePrompt,
		SecureFieldType:        item.SecureFieldType,

		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}

	if item.Assignee != nil && item.Assignee.ID != 0 {
		assignee := ToUserDTO(*item.Assignee)
		dto.Assignee = &assignee
	}

	if len(item.History) > 0 {
		dto.History = make([]HistoryEntryDTO, len(item.History))
		for i, entry := range item.History {
			dto.History[i] = ToHistoryEntryDTO(entry)
		}
	}

	return dto
}

// ToHistoryEntryDTO converts an ActionStatusHistory model to HistoryEntryDTO
func ToHistoryEntryDTO(entry models.ActionStatusHistory) HistoryEntryDTO {
	notified := entry.NotifiedIDs()
	if notified == nil {
		notified = []uint64{}
	}
	return HistoryEntryDTO{
		ID:               entry.ID,
		ActionItemID:     entry.ActionItemID,
		PreviousStatus:   entry.PreviousStatus,
		NewStatus:        entry.NewStatus,
		Summary:          entry.Summary,
		OutcomeTag:       entry.OutcomeTag,
		NotifiedUserIDs:  notified,
		FollowUpActionID: entry.FollowUpActionID,
		CreatedBy:        entry.CreatedBy,
		CreatedAt:        entry.CreatedAt,
	}
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:         n.ID,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}
