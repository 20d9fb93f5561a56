package database

import (
	"fmt"

	"github.com/yukikurage/productivity-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes creates the composite indexes behind owner-scoped listing
// filters. Existing indexes are left alone.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name    string
		columns string
	}{
		{"idx_tasks_owner_status", "owner_id, status"},
		{"idx_tasks_owner_priority", "owner_id, priority"},
		{"idx_tasks_owner_deadline", "owner_id, deadline"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("columns", idx.columns))
	}

	return nil
}
