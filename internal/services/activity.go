package services

import (
	"encoding/json"
	"log/slog"

	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"gorm.io/datatypes"
)

// ActivitySink records portal activity for audit display. Recording is
// best-effort and must never carry secret payloads: vault operations are
// logged by action kind only.
type ActivitySink interface {
	Record(entityType string, entityID uint64, action string, metadata map[string]any, userID uint64)
}

// DBActivitySink appends activity rows to the database.
type DBActivitySink struct {
	repo repository.ActivityLogRepository
}

// NewDBActivitySink creates an ActivitySink backed by the database
func NewDBActivitySink(repo repository.ActivityLogRepository) *DBActivitySink {
	return &DBActivitySink{repo: repo}
}

// Record appends one activity row, logging on failure
func (s *DBActivitySink) Record(entityType string, entityID uint64, action string, metadata map[string]any, userID uint64) {
	entry := &models.ActivityLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     userID,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			slog.Error("failed to encode activity metadata", "action", action, "error", err)
		} else {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.repo.Create(entry); err != nil {
		slog.Error("failed to record activity",
			"entity_type", entityType, "entity_id", entityID, "action", action, "error", err)
	}
}
