package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrActionItemNotFound = errors.New("action item not found")
	ErrSummaryRequired    = errors.New("summary is required")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNotAuthorized      = errors.New("caller is not authorized for this transition")
)

// clientAllowedStatuses is the restricted input alphabet for client
// callers. OVERDUE is system/staff-only.
var clientAllowedStatuses = map[models.ActionItemStatus]bool{
	models.ActionStatusPending:    true,
	models.ActionStatusInProgress: true,
	models.ActionStatusCompleted:  true,
}

// TransitionService applies status changes to action items: it validates
// input, authorizes the caller, updates the item, appends exactly one
// audit ledger row, and optionally spawns a follow-up item — all inside
// one transaction. Notification fan-out happens after commit and is
// best-effort.
type TransitionService struct {
	itemRepo      repository.ActionItemRepository
	notifications NotificationSink
	activity      ActivitySink
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(itemRepo repository.ActionItemRepository, notifications NotificationSink, activity ActivitySink) *TransitionService {
	return &TransitionService{
		itemRepo:      itemRepo,
		notifications: notifications,
		activity:      activity,
	}
}

// FollowUpInput describes the optional follow-up item spawned by a transition.
type FollowUpInput struct {
	AssigneeID uint64
	Notes      string
}

// TransitionInput carries one status change request.
type TransitionInput struct {
	ActionItemID     uint64
	CallerID         uint64
	CallerRole       models.Role
	NewStatus        models.ActionItemStatus
	Summary          string
	OutcomeTag       string
	NotifyUserIDs    []uint64
	ReviewRequired   *bool
	ReviewAssigneeID *uint64
	FollowUp         *FollowUpInput
}

// TransitionResult is the committed outcome of a transition.
type TransitionResult struct {
	Item     *models.ActionItem
	History  *models.ActionStatusHistory
	FollowUp *models.ActionItem
}

// Transition validates and applies a status change. Validation and
// authorization are checked before any write; the item update, optional
// follow-up creation, and history append commit atomically or not at all.
func (s *TransitionService) Transition(input TransitionInput) (*TransitionResult, error) {
	summary := strings.TrimSpace(input.Summary)
	if summary == "" {
		return nil, ErrSummaryRequired
	}
	if !input.NewStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	result := &TransitionResult{}

	err := s.itemRepo.InTransaction(func(store repository.TransitionStore) error {
		item, err := store.ItemForUpdate(input.ActionItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActionItemNotFound
			}
			return fmt.Errorf("failed to load action item: %w", err)
		}

		if err := authorizeTransition(item, input.CallerID, input.CallerRole, input.NewStatus); err != nil {
			return err
		}

		previousStatus := item.Status

		item.Status = input.NewStatus
		if input.NewStatus == models.ActionStatusCompleted {
			now := time.Now()
			item.CompletedAt = &now
		} else {
			item.CompletedAt = nil
		}

		// Review flags are a staff concern; client input is ignored.
		if input.CallerRole.IsStaff() && input.ReviewRequired != nil {
			item.ReviewRequired = *input.ReviewRequired
			if *input.ReviewRequired {
				item.ReviewAssigneeID = input.ReviewAssigneeID
			} else {
				item.ReviewAssigneeID = nil
			}
		}

		if err := store.SaveItem(item); err != nil {
			return fmt.Errorf("failed to update action item: %w", err)
		}

		var followUp *models.ActionItem
		if input.CallerRole.IsStaff() && input.FollowUp != nil && input.FollowUp.AssigneeID != 0 {
			followUp = buildFollowUp(item, input.FollowUp, input.CallerID)
			if err := store.CreateItem(followUp); err != nil {
				return fmt.Errorf("failed to create follow-up item: %w", err)
			}
		}

		entry := &models.ActionStatusHistory{
			ActionItemID:   item.ID,
			PreviousStatus: &previousStatus,
			NewStatus:      input.NewStatus,
			Summary:        summary,
			OutcomeTag:     input.OutcomeTag,
			CreatedBy:      input.CallerID,
		}
		if err := entry.EncodeNotifiedIDs(input.NotifyUserIDs); err != nil {
			return fmt.Errorf("failed to encode notified user ids: %w", err)
		}
		if followUp != nil {
			entry.FollowUpActionID = &followUp.ID
		}
		if err := store.AppendHistory(entry); err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}

		result.Item = item
		result.History = entry
		result.FollowUp = followUp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordActivity(result, input)
	s.notifyParticipants(result, input)

	return result, nil
}

// authorizeTransition enforces the role-dependent input alphabet. Staff
// may move any item to any status; a client may only move items they are
// assigned to or that belong to their own project, and never to OVERDUE.
func authorizeTransition(item *models.ActionItem, callerID uint64, role models.Role, newStatus models.ActionItemStatus) error {
	if role.IsStaff() {
		return nil
	}
	if role != models.RoleClient {
		return ErrNotAuthorized
	}

	if !clientAllowedStatuses[newStatus] {
		return ErrNotAuthorized
	}

	assigned := item.AssignedTo != nil && *item.AssignedTo == callerID
	ownsProject := item.Project != nil && item.Project.ClientID == callerID
	if !assigned && !ownsProject {
		return ErrNotAuthorized
	}

	return nil
}

func buildFollowUp(original *models.ActionItem, input *FollowUpInput, callerID uint64) *models.ActionItem {
	description := strings.TrimSpace(input.Notes)
	if description == "" {
		description = fmt.Sprintf("Follow up on the outcome of %q.", original.Title)
	}

	assigneeID := input.AssigneeID
	return &models.ActionItem{
		Title:           "Follow up: " + original.Title,
		Description:     description,
		Status:          models.ActionStatusPending,
		Priority:        original.Priority,
		ProjectID:       original.ProjectID,
		AssignedTo:      &assigneeID,
		CreatedBy:       callerID,
		VisibleToClient: false,
	}
}

func (s *TransitionService) recordActivity(result *TransitionResult, input TransitionInput) {
	metadata := map[string]any{
		"previous_status": result.History.PreviousStatus,
		"new_status":      result.History.NewStatus,
	}
	if input.OutcomeTag != "" {
		metadata["outcome_tag"] = input.OutcomeTag
	}
	s.activity.Record("action_item", result.Item.ID, "status_changed", metadata, input.CallerID)

	if result.FollowUp != nil {
		s.activity.Record("action_item", result.FollowUp.ID, "follow_up_created", map[string]any{
			"origin_action_item_id": result.Item.ID,
		}, input.CallerID)
	}
}

// notifyParticipants runs after commit. Failures are isolated per
// recipient and never surface to the caller.
func (s *TransitionService) notifyParticipants(result *TransitionResult, input TransitionInput) {
	if len(input.NotifyUserIDs) > 0 {
		message := fmt.Sprintf("%q moved to %s: %s", result.Item.Title, result.Item.Status, result.History.Summary)
		dispatchNotifications(s.notifications, input.NotifyUserIDs, message, "action_item", result.Item.ID)
	}

	if result.FollowUp != nil && result.FollowUp.AssignedTo != nil {
		message := fmt.Sprintf("You have been assigned a follow-up task: %q", result.FollowUp.Title)
		dispatchNotifications(s.notifications, []uint64{*result.FollowUp.AssignedTo}, message, "action_item", result.FollowUp.ID)
	}
}
