package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
)

// NotificationSink delivers a message to one user. Delivery is best-effort:
// the transition engine never fails or rolls back because a sink call
// errored. Implementations must tolerate concurrent calls.
type NotificationSink interface {
	Notify(userID uint64, message string, entityType string, entityID uint64) error
}

// DBNotificationSink stores notifications as portal inbox rows.
type DBNotificationSink struct {
	repo repository.NotificationRepository
}

// NewDBNotificationSink creates a NotificationSink backed by the database
func NewDBNotificationSink(repo repository.NotificationRepository) *DBNotificationSink {
	return &DBNotificationSink{repo: repo}
}

// Notify writes one inbox row
func (s *DBNotificationSink) Notify(userID uint64, message string, entityType string, entityID uint64) error {
	n := &models.Notification{
		UserID:     userID,
		Message:    message,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if err := s.repo.Create(n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// dispatchNotifications fans a message out to each recipient concurrently.
// Per-recipient failures (including panics) are logged and swallowed; the
// committed transition is never affected, and no ordering is guaranteed
// between recipients.
func dispatchNotifications(sink NotificationSink, userIDs []uint64, message string, entityType string, entityID uint64) {
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("notification dispatch panicked",
						"user_id", uid, "entity_type", entityType, "entity_id", entityID, "panic", r)
				}
			}()
			if err := sink.Notify(uid, message, entityType, entityID); err != nil {
				slog.Error("notification dispatch failed",
					"user_id", uid, "entity_type", entityType, "entity_id", entityID, "error", err)
			}
		}(userID)
	}
	wg.Wait()
}
