package kvstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/janhq/mistralhub/internal/infrastructure/database"
	"github.com/janhq/mistralhub/internal/infrastructure/database/entities"
)

// SQL persists keys in the kv_entries table through GORM.
type SQL struct {
	db *gorm.DB
}

// NewSQL creates a KV backed by the provided DB. The schema must already be migrated.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var record entities.KVEntry
	err := s.db.WithContext(ctx).Where(&entities.KVEntry{Key: key}).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	record := entities.KVEntry{Key: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(&entities.KVEntry{Key: key}).Delete(&entities.KVEntry{}).Error
}

func (s *SQL) Close() error {
	return database.Close(s.db)
}
