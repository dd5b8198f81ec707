package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate
// creates from struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"action_items", "idx_action_items_status", "status"},
		{"action_items", "idx_action_items_due_date", "due_date"},
		{"action_items", "idx_action_items_retention", "secure_retention_policy"},

		{"action_status_histories", "idx_action_histories_created_at", "created_at"},

		{"notifications", "idx_notifications_read_at", "read_at"},

		{"activity_logs", "idx_activity_logs_entity", "entity_type, entity_id"},

		{"projects", "idx_projects_client_id", "client_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
