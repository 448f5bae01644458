package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/mistralhub/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.KVEntry{}); err != nil {
		return err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entities.KVEntry{}).Count(&count).Error; err != nil {
		return err
	}
	log.Debug().Int64("rows", count).Str("dialect", db.Dialector.Name()).Msg("kv store schema ready")
	return nil
}
