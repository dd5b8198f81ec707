package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/clearpointhq/client-portal-api/internal/dto"
	apierrors "github.com/clearpointhq/client-portal-api/internal/errors"
	"github.com/clearpointhq/client-portal-api/internal/middleware"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"github.com/clearpointhq/client-portal-api/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler exposes the portal notification inbox.
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
	}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	notifications, total, err := h.notificationRepo.ListByUserID(userID, params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	dtos := make([]dto.NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = dto.ToNotificationDTO(n)
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationRepo.MarkRead(notificationID, userID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Notification not found")
			return
		}
		apierrors.InternalError(c, "Failed to update notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}
