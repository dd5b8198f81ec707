package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clearpointhq/client-portal-api/internal/constants"
	"github.com/clearpointhq/client-portal-api/internal/dto"
	apierrors "github.com/clearpointhq/client-portal-api/internal/errors"
	"github.com/clearpointhq/client-portal-api/internal/middleware"
	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"github.com/clearpointhq/client-portal-api/internal/services"
	"github.com/clearpointhq/client-portal-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// ActionItemHandler exposes the action item lifecycle over HTTP.
type ActionItemHandler struct {
	transitionService *services.TransitionService
	vaultService      *services.VaultService
	itemRepo          repository.ActionItemRepository
	activityRepo      repository.ActivityLogRepository
}

// NewActionItemHandler creates a new ActionItemHandler
func NewActionItemHandler(
	transitionService *services.TransitionService,
	vaultService *services.VaultService,
	itemRepo repository.ActionItemRepository,
	activityRepo repository.ActivityLogRepository,
) *ActionItemHandler {
	return &ActionItemHandler{
		transitionService: transitionService,
		vaultService:      vaultService,
		itemRepo:          itemRepo,
		activityRepo:      activityRepo,
	}
}

// ListActionItems returns action items visible to the current caller.
// Staff see everything; clients see items assigned to them or
// client-visible items on their own projects.
func (h *ActionItemHandler) ListActionItems(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	role, exists := middleware.GetUserRole(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.ActionItemFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		filter.ProjectID = &projectID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ActionItemStatus(statusStr)
		if !status.IsValid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &status
	}
	if c.Query("assigned_to_me") == "true" {
		filter.AssignedTo = &userID
	}

	if !role.IsStaff() {
		filter.ClientViewerID = &userID
	}

	items, total, err := h.itemRepo.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch action items")
		return
	}

	dtos := make([]dto.ActionItemDTO, len(items))
	for i, item := range items {
		dtos[i] = dto.ToActionItemDTO(item)
	}

	c.JSON(http.StatusOK, gin.H{
		"action_items": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetActionItem returns one action item with its status history.
func (h *ActionItemHandler) GetActionItem(c *gin.Context) {
	item, ok := middleware.GetActionItem(c)
	if !ok {
		apierrors.InternalError(c, "Action item not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	if !role.IsStaff() && !clientMaySee(&item, userID) {
		// 404 instead of 403 to avoid leaking item existence to
		// unrelated clients.
		apierrors.NotFound(c, "Action item not found")
		return
	}

	loaded, err := h.itemRepo.FindByID(item.ID, "Assignee", "History")
	if err != nil {
		apierrors.InternalError(c, "Failed to load action item")
		return
	}

	c.JSON(http.StatusOK, dto.ToActionItemDTO(*loaded))
}

// UpdateStatus applies a status transition to an action item.
func (h *ActionItemHandler) UpdateStatus(c *gin.Context) {
	item, ok := middleware.GetActionItem(c)
	if !ok {
		apierrors.InternalError(c, "Action item not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	type FollowUpRequest struct {
		AssigneeID uint64 `json:"assignee_id" binding:"required"`
		Notes      string `json:"notes"`
	}
	type UpdateStatusRequest struct {
		NewStatus        string           `json:"new_status" binding:"required"`
		Summary          string           `json:"summary" binding:"required"`
		OutcomeTag       string           `json:"outcome_tag"`
		NotifyUserIDs    []uint64         `json:"notify_user_ids"`
		ReviewRequired   *bool            `json:"review_required"`
		ReviewAssigneeID *uint64          `json:"review_assignee_id"`
		FollowUp         *FollowUpRequest `json:"follow_up"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.TransitionInput{
		ActionItemID:     item.ID,
		CallerID:         userID,
		CallerRole:       role,
		NewStatus:        models.ActionItemStatus(req.NewStatus),
		Summary:          req.Summary,
		OutcomeTag:       req.OutcomeTag,
		NotifyUserIDs:    req.NotifyUserIDs,
		ReviewRequired:   req.ReviewRequired,
		ReviewAssigneeID: req.ReviewAssigneeID,
	}
	if req.FollowUp != nil {
		input.FollowUp = &services.FollowUpInput{
			AssigneeID: req.FollowUp.AssigneeID,
			Notes:      req.FollowUp.Notes,
		}
	}

	result, err := h.transitionService.Transition(input)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	response := dto.TransitionResponse{
		Item:    dto.ToActionItemDTO(*result.Item),
		History: dto.ToHistoryEntryDTO(*result.History),
	}
	if result.FollowUp != nil {
		followUp := dto.ToActionItemDTO(*result.FollowUp)
		response.FollowUp = &followUp
	}

	c.JSON(http.StatusOK, response)
}

// SubmitSecureResponse stores the caller's confidential value for an item.
func (h *ActionItemHandler) SubmitSecureResponse(c *gin.Context) {
	item, ok := middleware.GetActionItem(c)
	if !ok {
		apierrors.InternalError(c, "Action item not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	type SubmitRequest struct {
		Value string `json:"value" binding:"required"`
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.vaultService.Submit(item.ID, userID, req.Value); err != nil {
		respondVaultError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Secure response submitted",
	})
}

// GetSecureResponse decrypts and returns the submitted value. Staff only.
func (h *ActionItemHandler) GetSecureResponse(c *gin.Context) {
	item, ok := middleware.GetActionItem(c)
	if !ok {
		apierrors.InternalError(c, "Action item not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	view, err := h.vaultService.Retrieve(item.ID, userID, role)
	if err != nil {
		respondVaultError(c, err)
		return
	}

	response := gin.H{
		"prompt":       view.Prompt,
		"value":        view.Value,
		"submitted_at": view.SubmittedAt,
	}
	if view.Submitter != nil {
		response["submitter"] = dto.ToUserDTO(*view.Submitter)
	}

	c.JSON(http.StatusOK, response)
}

// DeleteSecureResponse removes the vault slot. Staff only.
func (h *ActionItemHandler) DeleteSecureResponse(c *gin.Context) {
	item, ok := middleware.GetActionItem(c)
	if !ok {
		apierrors.InternalError(c, "Action item not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	if err := h.vaultService.Delete(item.ID, userID, role); err != nil {
		respondVaultError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Secure response deleted",
	})
}

// ListActivity returns the activity trail for an item, newest first.
// Staff only; routed behind RequireStaff.
func (h *ActionItemHandler) ListActivity(c *gin.Context) {
	item, ok := middleware.GetActionItem(c)
	if !ok {
		apierrors.InternalError(c, "Action item not found in context")
		return
	}

	entries, err := h.activityRepo.ListByEntity("action_item", item.ID, constants.MaxPageSize)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity": entries,
	})
}

// clientMaySee reports whether a client caller can view an item: they are
// the assignee, or the item is client-visible on a project they own.
func clientMaySee(item *models.ActionItem, userID uint64) bool {
	if item.AssignedTo != nil && *item.AssignedTo == userID {
		return true
	}
	return item.VisibleToClient && item.Project != nil && item.Project.ClientID == userID
}

func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSummaryRequired),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrActionItemNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

func respondVaultError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSecureResponseNotEnabled),
		errors.Is(err, services.ErrSecureValueRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrActionItemNotFound),
		errors.Is(err, services.ErrSecureResponseNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
